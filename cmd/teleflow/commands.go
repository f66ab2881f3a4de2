package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/coach"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/db"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/mcpserver"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

func newStagesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "Print the call script with stage targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.load()
			if err != nil {
				return err
			}
			defer e.close()
			return printStages(cmd.OutOrStdout(), e.catalog, e.cfg.Language)
		},
	}
}

func printStages(w io.Writer, catalog *script.Catalog, lang script.Locale) error {
	for i, st := range catalog.Stages() {
		target := "no limit"
		if d, ok := st.Target(); ok {
			target = d.String()
		}
		if _, err := fmt.Fprintf(w, "%d. %s [%s] (%s, target %s)\n", i+1, st.Title.Get(lang), st.ID, st.TimeLimit, target); err != nil {
			return err
		}
		for _, p := range st.Points {
			mark := "-"
			if p.Checklist {
				mark = "!"
			}
			fmt.Fprintf(w, "   %s %s\n", mark, p.Text.Get(lang))
		}
	}
	return nil
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived calls, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.load()
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.CallHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeHistoryJSON(cmd.OutOrStdout(), records)
			}
			return writeHistoryTable(cmd.OutOrStdout(), records, e.catalog, e.cfg.Language)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of calls (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func writeHistoryJSON(w io.Writer, records []db.CallRecord) error {
	if records == nil {
		records = []db.CallRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeHistoryTable(w io.Writer, records []db.CallRecord, catalog *script.Catalog, lang script.Locale) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No archived calls.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDURATION\tSTAGES\tNOTES")
	for _, rec := range records {
		titles := make([]string, len(rec.CompletedStages))
		for i, id := range rec.CompletedStages {
			titles[i] = id
			if st, err := catalog.Stage(id); err == nil {
				titles[i] = st.Title.Get(lang)
			}
		}
		note, _, _ := strings.Cut(strings.TrimSpace(rec.Notes), "\n")
		if len([]rune(note)) > 40 {
			note = string([]rune(note)[:39]) + "…"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			rec.ID,
			rec.Date.Local().Format("2006-01-02 15:04"),
			time.Duration(rec.Duration)*time.Second,
			strings.Join(titles, ", "),
			note,
		)
	}
	return tw.Flush()
}

func newAskCmd(flags *globalFlags) *cobra.Command {
	var stageID string
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the coach one question in the context of a stage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.load()
			if err != nil {
				return err
			}
			defer e.close()

			st := e.catalog.First()
			if stageID != "" {
				if st, err = e.catalog.Stage(stageID); err != nil {
					return fmt.Errorf("--stage %q: %w", stageID, err)
				}
			}

			svc := coach.New(e.cfg.Coach, e.logger)
			reply := svc.Query(cmd.Context(), st.Context(e.cfg.Language), strings.Join(args, " "), e.cfg.Language)
			fmt.Fprintln(cmd.OutOrStdout(), reply.Message(e.cfg.Language))
			if reply.Status != coach.StatusOK && reply.Status != coach.StatusNoResponse {
				return fmt.Errorf("coach: %s", reply.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stageID, "stage", "", "stage id for context (default first stage)")
	return cmd
}

func newMCPCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve script, notes, history and coaching as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.load()
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			srv := mcpserver.New(e.catalog, store, coach.New(e.cfg.Coach, e.logger), e.cfg.Language, e.logger)
			return srv.ServeStdio(version)
		},
	}
}
