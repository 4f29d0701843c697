package dodex

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Keep the index notes of a vault complete"
	MsgCheckShort      = "Add missing links to every index"
	MsgWatchShort      = "Follow vault changes and clear marks"
	MsgExploreShort    = "Browse the vault and its marks"
	MsgTreeShort       = "Print the vault tree with marks"
	MsgMarksShort      = "List marked files"
	MsgUnmarkShort     = "Remove marks"
	MsgConfigShort     = "Show and change settings"
	MsgConfigShowShort = "Print the effective settings"
	MsgConfigSetShort  = "Set one setting in the vault file"
	MsgConfigInitShort = "Write a commented vault configuration file"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgDryRunNotice      = "\nDRY RUN MODE - No changes were made"
	MsgNoMarks           = "No marks."
	MsgUnmarkedAll       = "All marks removed."
	MsgUnmarkedFormat    = "Removed %d mark(s).\n"
	MsgNotMarkedFormat   = "Not marked: %s\n"
	MsgWatchingFormat    = "Watching %s (Ctrl+C to stop, SIGHUP to check)\n"
	MsgConfigSetFormat   = "Set %s = %s in %s\n"
	MsgConfigInitFormat  = "Created %s\n"
	MsgConfigExistFormat = "%s already exists, use --force to replace it"
	MsgPreviewFormat     = "\n── %s ──\n"

	// Error messages
	MsgErrUnmarkArgs  = "give paths to unmark or --all"
	MsgErrCheckErrors = "check finished with %d kind(s) of error"
	MsgErrNoCommand   = "no command specified"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagVault   = "Vault folder (default: $DODEX_VAULT or discovered from the current folder)"
	MsgFlagFormat  = "Output format: auto, terminal, text or json"
	MsgFlagNoCache = "Resolve links without the link cache"
	MsgFlagDryRun  = "Compute missing links without writing anything"
	MsgFlagPreview = "With --dry-run, show the content that would be written"
	MsgFlagAll     = "Remove every mark"
	MsgFlagForce   = "Replace an existing file"
	MsgFlagExpand  = "Expand every folder"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/check-long.txt
	msgCheckLongRaw string
	MsgCheckLong    = strings.TrimSpace(msgCheckLongRaw)

	//go:embed msgs/check-example.txt
	msgCheckExampleRaw string
	MsgCheckExample    = strings.TrimRight(msgCheckExampleRaw, "\n")

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/explore-long.txt
	msgExploreLongRaw string
	MsgExploreLong    = strings.TrimSpace(msgExploreLongRaw)

	//go:embed msgs/marks-long.txt
	msgMarksLongRaw string
	MsgMarksLong    = strings.TrimSpace(msgMarksLongRaw)

	//go:embed msgs/unmark-long.txt
	msgUnmarkLongRaw string
	MsgUnmarkLong    = strings.TrimSpace(msgUnmarkLongRaw)

	//go:embed msgs/unmark-example.txt
	msgUnmarkExampleRaw string
	MsgUnmarkExample    = strings.TrimRight(msgUnmarkExampleRaw, "\n")

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/config-example.txt
	msgConfigExampleRaw string
	MsgConfigExample    = strings.TrimRight(msgConfigExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/fallback-warning.txt
	msgFallbackWarningRaw string
	MsgFallbackWarning    = strings.TrimSpace(msgFallbackWarningRaw) + "\n"

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
