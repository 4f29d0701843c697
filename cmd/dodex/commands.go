package dodex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/arthur-debert/dodex/internal/version"
	"github.com/arthur-debert/dodex/pkg/cobrax/topics"
	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/explorer"
	"github.com/arthur-debert/dodex/pkg/filesystem"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/notify"
	"github.com/arthur-debert/dodex/pkg/paths"
	"github.com/arthur-debert/dodex/pkg/style"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/arthur-debert/dodex/pkg/validator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ExitCode maps a command error to the process exit status: 2 for bad
// input or configuration, 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch errors.GetErrorCode(err) {
	case errors.ErrInvalidInput, errors.ErrConfigLoad, errors.ErrConfigParse, errors.ErrConfigValid:
		return 2
	}
	return 1
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	var dryRun, preview bool

	cmd := &cobra.Command{
		Use:     "check",
		Short:   MsgCheckShort,
		Long:    MsgCheckLong,
		Example: MsgCheckExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := g.outputFormat(cmd)
			if err != nil {
				return err
			}
			app, err := g.openApp(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			log.Info().
				Str("vault", app.Paths.VaultRoot()).
				Bool("dry_run", dryRun).
				Msg("Checking indexes")

			summary, err := app.Check(cmd.Context(), validator.RunOptions{DryRun: dryRun})
			if err != nil {
				return err
			}
			if err := writeCheck(cmd.OutOrStdout(), format, summary, dryRun, preview); err != nil {
				return err
			}
			if len(summary.Errors) > 0 {
				return errors.Newf(summary.Errors[0], MsgErrCheckErrors, len(summary.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&preview, "preview", false, MsgFlagPreview)
	return cmd
}

type indexReport struct {
	Index   string   `json:"index"`
	Target  string   `json:"target"`
	Missing []string `json:"missing"`
	Written bool     `json:"written"`
}

type previewReport struct {
	Index   string   `json:"index"`
	Target  string   `json:"target"`
	Mode    string   `json:"mode"`
	Links   []string `json:"links"`
	Content string   `json:"content"`
}

type checkReport struct {
	Timestamp int64           `json:"timestamp"`
	Completed bool            `json:"completed"`
	Missing   int             `json:"missing"`
	Folders   int             `json:"folders"`
	Errors    []string        `json:"errors"`
	Indexes   []indexReport   `json:"indexes"`
	Previews  []previewReport `json:"previews,omitempty"`
}

func writeCheck(out io.Writer, format style.Format, summary *validator.Summary, dryRun, preview bool) error {
	if format == style.FormatJSON {
		report := checkReport{
			Timestamp: summary.Timestamp,
			Completed: summary.Completed,
			Missing:   summary.Missing,
			Folders:   summary.Folders,
			Errors:    []string{},
			Indexes:   []indexReport{},
		}
		for _, code := range summary.Errors {
			report.Errors = append(report.Errors, string(code))
		}
		for _, idx := range summary.Indexes {
			report.Indexes = append(report.Indexes, indexReport(idx))
		}
		for _, p := range summary.Previews {
			report.Previews = append(report.Previews, previewReport{
				Index:   p.Index,
				Target:  p.Target,
				Mode:    string(p.Mode),
				Links:   p.Links,
				Content: p.Content,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	results := make([]style.IndexResult, 0, len(summary.Indexes))
	for _, idx := range summary.Indexes {
		results = append(results, style.IndexResult(idx))
	}
	if rendered := style.NewRenderer(format).RenderIndexes(results, dryRun); rendered != "" {
		_, _ = fmt.Fprintln(out, strings.TrimRight(rendered, "\n"))
	}
	_, _ = fmt.Fprintln(out, summary.Message())

	if dryRun {
		if preview {
			markdown := topics.NewGlamourRenderer()
			for _, p := range summary.Previews {
				_, _ = fmt.Fprintf(out, MsgPreviewFormat, p.Target)
				content := p.Content
				if format == style.FormatTerminal && strings.HasSuffix(p.Target, "."+types.ExtMarkdown) {
					content = markdown.Render(content, ".md")
				}
				_, _ = fmt.Fprintln(out, strings.TrimRight(content, "\n"))
			}
		}
		_, _ = fmt.Fprintln(out, MsgDryRunNotice)
	}
	return nil
}

func newWatchCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.openApp(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						log.Info().Msg("Check requested by signal")
						app.RequestCheck(ctx)
					}
				}
			}()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgWatchingFormat, app.Paths.VaultRoot())
			return app.Watch(ctx)
		},
	}
}

func newExploreCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "explore",
		Short:   MsgExploreShort,
		Long:    MsgExploreLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := g.outputFormat(cmd); err != nil {
				return err
			}
			logging.SetupLoggerWithConsole(g.verbosity, io.Discard)

			var (
				mu      sync.Mutex
				program *tea.Program
			)
			status := notify.Func(func(msg string) {
				mu.Lock()
				p := program
				mu.Unlock()
				if p != nil {
					p.Send(explorer.StatusMsg(msg))
				}
			})

			host := explorer.NewHost()
			app, err := g.openApp(cmd, openOptions{notifier: status, visual: host})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			root, err := app.Vault.Root()
			if err != nil {
				return err
			}
			e := explorer.New(root)
			host.Open(e)
			defer host.Close(e)
			app.Marker.Refresh()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			watched := make(chan error, 1)
			go func() { watched <- app.Watch(ctx) }()

			model := explorer.NewModel(e, explorer.Actions{
				Check:     func() { app.RequestCheck(ctx) },
				UnmarkAll: app.UnmarkAll,
				Reload:    app.Vault.Root,
			})

			mu.Lock()
			program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			p := program
			mu.Unlock()

			_, err = p.Run()
			cancel()
			if werr := <-watched; werr != nil && err == nil {
				err = werr
			}
			return err
		},
	}
}

func newTreeCmd(g *globalOptions) *cobra.Command {
	var expand bool

	cmd := &cobra.Command{
		Use:     "tree",
		Short:   MsgTreeShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := g.outputFormat(cmd); err != nil {
				return err
			}
			app, err := g.openApp(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			root, err := app.Vault.Root()
			if err != nil {
				return err
			}
			e := explorer.New(root)
			if expand {
				e.ExpandAll()
			}
			app.Marker.Flush()
			for _, row := range e.Rows() {
				row.SetMarked(app.Marker.IsMarked(row.Path(), row.Collapsed()))
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), style.TitleStyle.Render(root.Name))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), e.Render(-1))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&expand, "expand", "e", false, MsgFlagExpand)
	return cmd
}

type markReport struct {
	Path   string `json:"path"`
	Policy string `json:"policy"`
}

func newMarksCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "marks",
		Short:   MsgMarksShort,
		Long:    MsgMarksLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := g.outputFormat(cmd)
			if err != nil {
				return err
			}
			app, err := g.openApp(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			entries := app.Marks()
			out := cmd.OutOrStdout()
			switch {
			case format == style.FormatJSON:
				report := make([]markReport, 0, len(entries))
				for _, m := range entries {
					report = append(report, markReport{Path: m.Path, Policy: string(m.Policy)})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case len(entries) == 0:
				_, _ = fmt.Fprintln(out, MsgNoMarks)
			default:
				_, _ = fmt.Fprintln(out, strings.TrimRight(style.NewRenderer(format).RenderMarks(entries), "\n"))
			}
			return nil
		},
	}
}

func newUnmarkCmd(g *globalOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:               "unmark [paths...]",
		Short:             MsgUnmarkShort,
		Long:              MsgUnmarkLong,
		Example:           MsgUnmarkExample,
		GroupID:           "core",
		ValidArgsFunction: g.markedPathsCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New(errors.ErrInvalidInput, MsgErrUnmarkArgs)
			}
			app, err := g.openApp(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			out := cmd.OutOrStdout()
			if all {
				app.UnmarkAll()
				_, _ = fmt.Fprintln(out, MsgUnmarkedAll)
				return nil
			}
			unknown := app.Unmark(args...)
			for _, p := range unknown {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgNotMarkedFormat, p)
			}
			_, _ = fmt.Fprintf(out, MsgUnmarkedFormat, len(args)-len(unknown))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	return cmd
}

// markedPathsCompletion completes the marked paths not already given.
func (g *globalOptions) markedPathsCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	app, err := g.openApp(cmd, openOptions{notifier: notify.Func(func(string) {})})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer func() { _ = app.Close() }()

	given := make(map[string]bool, len(args))
	for _, a := range args {
		given[a] = true
	}
	var marked []string
	for _, m := range app.Marks() {
		if !given[m.Path] && strings.HasPrefix(m.Path, toComplete) {
			marked = append(marked, m.Path)
		}
	}
	return marked, cobra.ShellCompDirectiveNoFileComp
}

// loadSettings reads the layered settings without opening the vault.
func (g *globalOptions) loadSettings() (paths.Paths, *config.Settings, error) {
	p, err := paths.New(g.vault)
	if err != nil {
		return nil, nil, err
	}
	settings, err := config.Load(config.LoadOptions{
		UserConfigPath:  p.UserConfigPath(),
		VaultConfigPath: p.VaultConfigPath(),
	})
	if err != nil {
		return nil, nil, err
	}
	return p, settings, nil
}

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		Example: MsgConfigExample,
		GroupID: "misc",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, settings, err := g.loadSettings()
			if err != nil {
				return err
			}
			data, err := toml.Marshal(settings)
			if err != nil {
				return errors.Wrap(err, errors.ErrConfigParse, "failed to encode settings")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: MsgConfigSetShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, settings, err := g.loadSettings()
			if err != nil {
				return err
			}
			store := config.NewStore(filesystem.NewOS(), p.VaultConfigPath(), settings)
			var saveErr error
			store.OnSave(func(err error) { saveErr = err })
			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			store.Flush()
			if saveErr != nil {
				return saveErr
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigSetFormat, args[0], args[1], store.Path())
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New(g.vault)
			if err != nil {
				return err
			}
			fs := filesystem.NewOS()
			target := p.VaultConfigPath()
			if _, err := fs.Stat(target); err == nil && !force {
				return errors.Newf(errors.ErrInvalidInput, MsgConfigExistFormat, target)
			}
			if err := fs.WriteFile(target, []byte(config.GenerateConfigContent()), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigInitFormat, target)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	cmd.AddCommand(initCmd)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
