package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/netsession/internal/domain/analysis"
	"github.com/GriffinCanCode/netsession/internal/domain/registry"
	"github.com/GriffinCanCode/netsession/internal/domain/session"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/logging"
	"github.com/GriffinCanCode/netsession/internal/io/archive"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
	"github.com/GriffinCanCode/netsession/internal/shared/utils"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "sessionctl",
		Short:         "Inspect and verify network session archives",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log archive parsing details")

	// logs go to stderr so --json output stays parseable
	logger := func() *logging.Logger {
		if !verbose {
			return logging.NewNop()
		}
		l, err := logging.New(logging.Config{Level: "debug", Development: true, Output: "stderr"})
		if err != nil {
			return logging.NewNop()
		}
		return l
	}

	root.AddCommand(newInspectCmd(logger), newVerifyCmd(logger))
	return root
}

// InspectResult is the JSON output of the inspect command
type InspectResult struct {
	File       string                `json:"file"`
	SessionDir string                `json:"session_dir"`
	Version    string                `json:"version"`
	Metadata   types.SessionMetadata `json:"metadata"`
	Networks   []analysis.Summary    `json:"networks"`
	Tables     []TableEntry          `json:"tables"`
	Styles     []string              `json:"styles"`
	Properties []string              `json:"properties"`
	Apps       []string              `json:"apps"`
}

// TableEntry describes one persisted table
type TableEntry struct {
	Title     string `json:"title"`
	Network   string `json:"network,omitempty"`
	Type      string `json:"type,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Rows      int    `json:"rows"`
}

func newInspectCmd(logger func() *logging.Logger) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the contents of a session archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer log.Close()

			extract, err := os.MkdirTemp("", "sessionctl-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(extract)

			result, err := archive.NewReader(
				archive.WithReadLogger(log.Component("archive")),
				archive.WithExtractDir(extract),
			).ReadFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			out := inspect(args[0], result)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return printInspect(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func inspect(file string, result *archive.ReadResult) InspectResult {
	s := result.Session
	out := InspectResult{
		File:       file,
		SessionDir: result.SessionDir,
		Version:    result.Version,
		Metadata:   s.ToMetadata(),
		Networks:   []analysis.Summary{},
		Tables:     []TableEntry{},
		Styles:     []string{},
		Properties: []string{},
		Apps:       s.AppNames(),
	}

	for _, n := range s.Networks() {
		if n.IsRoot() {
			continue
		}
		out.Networks = append(out.Networks, analysis.Summarize(n))
	}
	for _, meta := range s.Tables() {
		entry := TableEntry{
			Title:     meta.Table.Title,
			Type:      string(meta.Type),
			Namespace: meta.Namespace,
			Rows:      len(meta.Table.Rows),
		}
		if meta.Network != nil {
			entry.Network = meta.Network.Name
		}
		out.Tables = append(out.Tables, entry)
	}
	for _, st := range s.VisualStyles() {
		out.Styles = append(out.Styles, st.Title)
	}
	for _, p := range s.Properties() {
		out.Properties = append(out.Properties, p.Name)
	}
	sort.Strings(out.Properties)
	if out.Apps == nil {
		out.Apps = []string{}
	}
	return out
}

func printInspect(w io.Writer, r InspectResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", r.File)
	fmt.Fprintf(tw, "Session:\t%s (version %s)\n", r.SessionDir, r.Version)
	fmt.Fprintf(tw, "Styles:\t%v\n", r.Styles)
	fmt.Fprintf(tw, "Properties:\t%v\n", r.Properties)
	fmt.Fprintf(tw, "Apps:\t%v\n", r.Apps)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "NETWORK\tNODES\tEDGES\tCOMPONENTS")
	for _, n := range r.Networks {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", n.Name, n.Nodes, n.Edges, n.Components)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "TABLE\tNETWORK\tTYPE\tNAMESPACE\tROWS")
	for _, t := range r.Tables {
		network := t.Network
		if network == "" {
			network = "(global)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", t.Title, network, t.Type, t.Namespace, t.Rows)
	}
	return tw.Flush()
}

func newVerifyCmd(logger func() *logging.Logger) *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check that an archive parses and restores cleanly, and print its digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer log.Close()

			digest, err := fileDigest(args[0], utils.NewHasher(utils.ParseHashAlgorithm(algorithm)))
			if err != nil {
				return err
			}

			extract, err := os.MkdirTemp("", "sessionctl-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(extract)

			result, err := archive.NewReader(
				archive.WithReadLogger(log.Component("archive")),
				archive.WithExtractDir(extract),
			).ReadFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("invalid archive: %w", err)
			}

			// restore into scratch registries to prove the model is consistent
			scratch := session.NewManager(registry.New(), log.Component("session"))
			if err := scratch.Apply(cmd.Context(), result.Session, args[0]); err != nil {
				return fmt.Errorf("archive does not restore: %w", err)
			}

			st := scratch.Registries().Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s:%s networks=%d views=%d tables=%d styles=%d\n",
				algorithm, digest, st.Networks, st.Views, st.Tables, st.Styles)
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algo", "sha256", "digest algorithm (sha256 or blake2b)")
	return cmd
}

func fileDigest(path string, hasher *utils.Hasher) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return hasher.HashReader(f)
}
