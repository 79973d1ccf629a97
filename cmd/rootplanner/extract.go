package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/qpig0218/Rootplanner/internal/api"
	"github.com/qpig0218/Rootplanner/internal/schedule"
)

var extractValidate bool

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract the schedule object from a saved model reply",
	Long: `Run the schedule extractor over a model reply read from a file or stdin,
without calling the provider. Useful for checking a rawResponse by hand.

Examples:
  rootplanner extract reply.txt
  pbpaste | rootplanner extract --validate -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read reply: %w", err)
		}

		block, ok := schedule.ExtractJSONBlock(string(data))
		if !ok {
			return errors.New("no JSON object found in reply")
		}

		var v any
		if err := json.Unmarshal([]byte(block), &v); err != nil {
			return fmt.Errorf("extracted object is not valid JSON: %w", err)
		}

		if extractValidate {
			validator, err := schedule.NewValidator()
			if err != nil {
				return err
			}
			if err := validator.Validate(json.RawMessage(block)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
		}

		return api.Output(v)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractValidate, "validate", false, "Check the object against the schedule schema")
	rootCmd.AddCommand(extractCmd)
}
