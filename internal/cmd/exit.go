package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/genelens/genelens/internal/observability"
)

// Exit reports a failed command and exits with the matching foundry code.
func Exit(err error) {
	ExitWithCode(observability.CLILogger, exitCodeFor(err), "Command failed", err)
}

// ExitWithCode exits the program with a semantic foundry exit code and logs the error.
//
// Parameters:
//   - logger: The logger to use for error output (can be nil for early failures)
//   - exitCode: The foundry exit code constant (e.g., foundry.ExitConfigInvalid)
//   - msg: Human-readable error message
//   - err: The underlying error (can be nil)
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	var envelope *errors.ErrorEnvelope
	isEnvelope := stderrors.As(err, &envelope) && envelope != nil

	if logger != nil {
		fields := []zap.Field{
			zap.Int("exit_code", info.Code),
			zap.String("exit_name", info.Name),
			zap.String("exit_category", info.Category),
		}

		if isEnvelope {
			fields = append(fields,
				zap.String("error_code", envelope.Code),
				zap.String("error_message", envelope.Message),
				zap.String("correlation_id", envelope.CorrelationID),
			)
			if envelope.Context != nil {
				fields = append(fields, zap.Any("error_context", envelope.Context))
			}
		} else if err != nil {
			fields = append(fields, zap.Error(err))
		}

		logger.Error(msg, fields...)
	} else {
		switch {
		case isEnvelope:
			fmt.Fprintf(os.Stderr, "FATAL: %s [%s]: %v (correlation: %s)\n",
				msg, envelope.Code, envelope.Message, envelope.CorrelationID)
		case err != nil:
			fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
		default:
			fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
		}
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	}

	os.Exit(info.Code)
}
