package dodex

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/arthur-debert/dodex/internal/version"
	"github.com/arthur-debert/dodex/pkg/cobrax/topics"
	"github.com/arthur-debert/dodex/pkg/core"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/notify"
	"github.com/arthur-debert/dodex/pkg/style"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbosity int
	vault     string
	format    string
	noCache   bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "dodex",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			logging.LogCommand(cmd.CommandPath(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&g.vault, "vault", "", MsgFlagVault)
	rootCmd.PersistentFlags().StringVar(&g.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().BoolVar(&g.noCache, "no-cache", false, MsgFlagNoCache)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newCheckCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newExploreCmd(g))
	rootCmd.AddCommand(newTreeCmd(g))
	rootCmd.AddCommand(newMarksCmd(g))
	rootCmd.AddCommand(newUnmarkCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	source, err := fs.Sub(topicFiles, "topics")
	if err == nil {
		err = topics.InitializeWithOptions(rootCmd, source, topics.Options{
			Renderer: topics.NewGlamourRenderer(),
		})
	}
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// openOptions tunes openApp for commands that display the vault.
type openOptions struct {
	notifier types.Notifier
	visual   types.VisualHost
}

// openApp opens the vault selected by the global flags, warning on stderr
// when no vault was found and the current folder is used.
func (g *globalOptions) openApp(cmd *cobra.Command, oo openOptions) (*core.App, error) {
	notifier := oo.notifier
	if notifier == nil {
		notifier = g.notifier(cmd)
	}
	app, err := core.Open(core.Options{
		VaultRoot: g.vault,
		Notifier:  notifier,
		Visual:    oo.visual,
		NoCache:   g.noCache,
	})
	if err != nil {
		return nil, err
	}
	if app.Paths.UsedFallback() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning, app.Paths.VaultRoot())
	}
	return app, nil
}

// notifier shows progress on stderr, with a spinner when it is a terminal.
func (g *globalOptions) notifier(cmd *cobra.Command) types.Notifier {
	if f, ok := cmd.ErrOrStderr().(*os.File); ok {
		return notify.New(f)
	}
	return notify.NewWriter(cmd.ErrOrStderr(), false)
}

// outputFormat resolves --format for the command's output.
func (g *globalOptions) outputFormat(cmd *cobra.Command) (style.Format, error) {
	f, err := style.ParseFormat(g.format)
	if err != nil {
		return f, err
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		if f == style.FormatAuto {
			f = style.FormatText
		}
		out = os.Stdout
	}
	return style.Resolve(f, out), nil
}
