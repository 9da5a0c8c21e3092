package cmd

import (
	"fmt"
	"strings"

	"registro/ctxlog"
	"registro/registration"

	"github.com/spf13/cobra"
)

var submitFields []string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the registration form once",
	Long: `Fill the configured form fields from --field flags and submit them.
Fields without a flag are sent empty. Unknown field names are sent too.`,
	Example: `  registro submit -f username=ana -f email=ana@example.com -f password=s3cret \
    -f ruc=20123456789 -f direccion="Av. Arequipa 123" -f telefono=999888777`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringArrayVarP(&submitFields, "field", "f", nil, "form field as key=value (repeatable)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	form, err := buildForm(cfg.Fields, submitFields)
	if err != nil {
		return err
	}

	logger, cleanup, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := ctxlog.WithLogger(cmd.Context(), logger)

	client := registration.NewClient(cfg.Endpoint)
	display := registration.NewWriterDisplay(cmd.OutOrStdout())

	outcome, err := registration.NewSubmitter(client, form, display).Submit(ctx)
	if err != nil {
		return fmt.Errorf("submitting registration: %w", err)
	}
	if !outcome.Success {
		return errRejected
	}
	return nil
}

// buildForm starts from the configured fields, all blank, and applies
// key=value pairs on top.
func buildForm(names []string, pairs []string) (*registration.StaticForm, error) {
	form := registration.NewStaticForm(names...)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid field %q: expected key=value", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid field %q: empty key", pair)
		}
		form.Set(key, value)
	}
	return form, nil
}
