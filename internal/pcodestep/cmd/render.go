package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <trace>",
	Short: "Print the p-code frame at --time",
	Long: `Render emulates the trace up to --time and prints the header, the
p-code rows and the unique variables. With --html the rows are written as
an HTML fragment instead.`,
	Example: `
# Print the frame two p-code steps into the first instruction
pcodestep render --time 0:0.2 trace.json

# Interpret unique 0 as a signed int
pcodestep render --time 0:0.2 --type 0=int trace.json

# HTML with its stylesheet
pcodestep render --time 0:0.2 --html --css trace.json > frame.html
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd, args[0])
		if err != nil {
			return err
		}
		defer sess.Close()

		coords, err := sess.coordinates(cmd)
		if err != nil {
			return err
		}
		sess.loader.Load(coords)

		specs, _ := cmd.Flags().GetStringSlice("type")
		if err := sess.assignTypes(specs); err != nil {
			return err
		}
		view := sess.loader.View()

		htmlOut, _ := cmd.Flags().GetBool("html")
		if !htmlOut {
			return printView(cmd.OutOrStdout(), sess, view)
		}
		withCSS, _ := cmd.Flags().GetBool("css")
		return writeHTML(cmd.OutOrStdout(), sess, withCSS)
	},
}

func writeHTML(w io.Writer, sess *session, withCSS bool) error {
	if withCSS {
		css, err := sess.palette.CSS()
		if err != nil {
			return fmt.Errorf("failed to generate CSS: %w", err)
		}
		if _, err := fmt.Fprintf(w, "<style>\n%s</style>\n", css); err != nil {
			return err
		}
	}
	frag, err := sess.palette.HTML(sess.loader.View().Rows)
	if err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	_, err = io.WriteString(w, frag)
	return err
}

func init() {
	renderCmd.Flags().Bool("html", false, "Write the rows as HTML")
	renderCmd.Flags().Bool("css", false, "Prepend the stylesheet to the HTML")
	renderCmd.Flags().StringSlice("type", nil, "Assign a type to a unique, <index>=<type>")
	rootCmd.AddCommand(renderCmd)
}
