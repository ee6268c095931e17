package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jarruda/json-log-reader/internal/config"
	"github.com/jarruda/json-log-reader/internal/ingest"
	"github.com/jarruda/json-log-reader/internal/render"
	"github.com/jarruda/json-log-reader/internal/search"
	"github.com/jarruda/json-log-reader/internal/session"
	"github.com/jarruda/json-log-reader/internal/slice"
	"github.com/jarruda/json-log-reader/internal/store"
	"github.com/jarruda/json-log-reader/pkg/logformat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jlv",
		Short:         "Viewer for newline-delimited JSON log files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(catCmd(), searchCmd(), followCmd(), showCmd(), sliceCmd(), configCmd())
	return root
}

// openLoaded opens a session and blocks until the initial scan completes,
// reporting progress on stderr
func openLoaded(ctx context.Context, path string, cfg *config.Config) (*session.Session, error) {
	sess, err := session.Open(ctx, path, cfg)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			sess.Close()
			return nil, ctx.Err()
		case ev := <-sess.Events():
			switch ev.Kind {
			case ingest.EventProgress:
				if ev.Total > 0 {
					fmt.Fprintf(os.Stderr, "\rLoading %s: %d%%", sess.Filename(), ev.Bytes*100/ev.Total)
				}
			case ingest.EventLoaded:
				fmt.Fprintf(os.Stderr, "\rLoaded %d records (%d bytes) from %s\n",
					sess.Store().LineCount(), sess.Store().Size(), sess.Filename())
				return sess, nil
			case ingest.EventFailed:
				sess.Close()
				return nil, ev.Err
			}
		}
	}
}

func catCmd() *cobra.Command {
	var levels []string
	var contains string
	var atTime string

	cmd := &cobra.Command{
		Use:   "cat FILE",
		Short: "Print decoded records, optionally filtered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sess, err := openLoaded(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			view := store.NewFilteredView(sess.Store())
			if len(levels) > 0 {
				set := make(map[logformat.Level]bool, len(levels))
				for _, l := range levels {
					set[logformat.ParseLevel(l)] = true
				}
				view.SetLevels(set)
			}
			if contains != "" {
				view.SetContains(contains)
			}

			from := 0
			if atTime != "" {
				at, err := time.Parse(time.RFC3339, atTime)
				if err != nil {
					return fmt.Errorf("bad --at-time %q: %w", atTime, err)
				}
				from = sess.Store().FindAtTime(at)
				if from < 0 {
					return nil
				}
			}

			renderer := render.NewRecordRenderer(cfg, true)
			for i := 0; i < view.LineCount(); i++ {
				rec, orig, err := view.Get(i)
				if err != nil {
					return err
				}
				if orig < from {
					continue
				}
				fmt.Println(renderer.Render(orig, rec))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&levels, "level", nil, "only show these severities (debug,info,warning,error,fatal)")
	cmd.Flags().StringVar(&contains, "contains", "", "only show lines containing this text")
	cmd.Flags().StringVar(&atTime, "at-time", "", "start at the first record at or after this RFC 3339 time")
	return cmd
}

func searchCmd() *cobra.Command {
	var q search.Query

	cmd := &cobra.Command{
		Use:   "search FILE PATTERN",
		Short: "Stream records matching a substring or regex",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sess, err := openLoaded(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			q.Pattern = args[1]
			st, err := sess.Search(cmd.Context(), q)
			if err != nil {
				return err
			}

			renderer := render.NewRecordRenderer(cfg, true)
			found := 0
			for idx := range st.Results() {
				rec, err := sess.Store().Get(idx)
				if err != nil {
					return err
				}
				fmt.Println(renderer.Render(idx, rec))
				found++
			}
			if err := st.Err(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%d matching records\n", found)
			return nil
		},
	}

	cmd.Flags().BoolVar(&q.Regex, "regex", false, "treat PATTERN as a regular expression")
	cmd.Flags().BoolVar(&q.CaseSensitive, "case-sensitive", false, "match case exactly")
	cmd.Flags().BoolVar(&q.WholeWord, "word", false, "match whole words only")
	cmd.Flags().StringVar(&q.Field, "field", "", "match a decoded field (time, level, tag, message, or a context key) instead of the raw line")
	cmd.Flags().BoolVar(&q.Backward, "backward", false, "scan from the end toward the start")
	cmd.Flags().IntVar(&q.Start, "from", -1, "record index to start scanning from (default: first record, or last with --backward)")
	return cmd
}

func followCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow FILE",
		Short: "Print records as they are appended, until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sess, err := openLoaded(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			renderer := render.NewRecordRenderer(cfg, true)
			printed := 0
			printNew := func() error {
				for ; printed < sess.Store().LineCount(); printed++ {
					rec, err := sess.Store().Get(printed)
					if err != nil {
						return err
					}
					fmt.Println(renderer.Render(printed, rec))
				}
				return nil
			}

			if err := printNew(); err != nil {
				return err
			}
			if err := sess.Follow(cmd.Context()); err != nil {
				return err
			}

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev := <-sess.Events():
					switch ev.Kind {
					case ingest.EventAppended:
						if err := printNew(); err != nil {
							return err
						}
					case ingest.EventFailed:
						return ev.Err
					}
				}
			}
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE INDEX",
		Short: "Print one record's full field set as highlighted JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad record index %q: %w", args[1], err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sess, err := openLoaded(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			rec, err := sess.Store().Get(idx)
			if err != nil {
				return fmt.Errorf("record %d: %w", idx, err)
			}
			fmt.Println(render.NewContextHighlighter().Highlight(rec))
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	var writeDefaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the config file location, optionally writing defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetConfigPath()
			if path == "" {
				return fmt.Errorf("no config directory available")
			}
			if writeDefaults {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists", path)
				}
				if err := config.Save(config.DefaultConfig()); err != nil {
					return err
				}
				fmt.Printf("Wrote defaults to %s\n", path)
				return nil
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeDefaults, "init", false, "write the default config to the config path")
	return cmd
}

func sliceCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "slice FILE START END",
		Short: "Export a record range [START, END) to a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad start %q: %w", args[1], err)
			}
			end, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("bad end %q: %w", args[2], err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sess, err := openLoaded(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			info, err := slice.NewSlicer("").SliceRange(sess.Store(), sess.Filename(), start, end, output)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote records %d-%d to %s\n", info.StartLine, info.EndLine, info.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default derives from FILE and the range)")
	return cmd
}
