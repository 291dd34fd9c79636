package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photogrid/pkg/fonts"
)

// fontsCommand reports which caption font a compose run would use.
func (c *CLI) fontsCommand() *cobra.Command {
	var opts fonts.Options

	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Show which caption font will be used",
		Long: `Resolve the caption font the same way compose does and report the result.

Candidates are tried in order. Each is looked up in --font-dir first and then
in the system font directories. When none loads, the built-in 7x13 bitmap face
is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			face, skipped := fonts.Resolve(opts)
			defer face.Close()

			p := c.printer()
			for _, a := range skipped {
				logger.Debug("font skipped", "name", a.Name, "err", a.Err)
				p.detail("%s: %v", a.Name, a.Err)
			}
			if face.Builtin {
				p.warn("No candidate font could be loaded; using the built-in face")
				p.field("Font", face.Name)
				return nil
			}
			p.success("Caption font resolved")
			p.field("Font", face.Name)
			p.field("Path", face.Path)
			p.field("Size", fmt.Sprintf("%gpt", opts.WithDefaults().Size))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&opts.Names, "font", nil, "font file name to try, most preferred first (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Dirs, "font-dir", nil, "extra directory searched for fonts (repeatable)")
	cmd.Flags().Float64Var(&opts.Size, "size", fonts.DefaultSize, "font size in points")

	return cmd
}
