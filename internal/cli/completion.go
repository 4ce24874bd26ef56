package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts. Time range and
// export format flags complete their values.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for vitalsgrid.

Bash:
  $ source <(vitalsgrid completion bash)

Zsh:
  $ vitalsgrid completion zsh > "${fpath[1]}/_vitalsgrid"

Fish:
  $ vitalsgrid completion fish > ~/.config/fish/completions/vitalsgrid.fish

PowerShell:
  PS> vitalsgrid completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
