package cli

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/firmdesk/internal/advisory"
)

// NewAdviseCommand asks the advisory model a question about a client and
// streams the answer.
func NewAdviseCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		clientID string
		attach   string
	)
	cmd := &cobra.Command{
		Use:   "advise <question...>",
		Short: "Ask the advisory model about a client",
		Long: `Ask the advisory model about a client. The answer streams to stdout
and the exchange is kept in the client's chat history.

Requires GEMINI_API_KEY (or GOOGLE_API_KEY) in the environment.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			att, err := readAttachment(attach)
			if err != nil {
				return WrapExitError(ExitCommandError, "attachment", err)
			}

			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			adv, err := a.Advisor(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "advisory", err)
			}

			w := cmd.OutOrStdout()
			if _, err := adv.Ask(cmd.Context(), clientID, strings.Join(args, " "), att, w); err != nil {
				fmt.Fprintln(w)
				return err
			}
			fmt.Fprintln(w)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().StringVar(&attach, "attach", "", "file to send with the question (pdf, image, text)")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func readAttachment(path string) (*advisory.Attachment, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return &advisory.Attachment{MIMEType: mt, Data: data}, nil
}
