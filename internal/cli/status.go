package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"

	"github.com/wannadb/docbase-tasks/internal/console"
	"github.com/wannadb/docbase-tasks/internal/orchestrator"
	"github.com/wannadb/docbase-tasks/internal/scratch"
)

var legalStatusOutputTypes = []string{console.TableFormat, console.JsonFormat, console.YamlFormat}

type StatusOptions struct {
	GlobalOptions

	Output string

	stdout io.Writer
}

// StatusReport is what the status command prints.
type StatusReport struct {
	TaskID string `json:"taskId"`
	State  string `json:"state"`
	Phase  string `json:"phase"`
	Detail string `json:"detail,omitempty"`
}

func DefaultStatusOptions() *StatusOptions {
	return &StatusOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        console.TableFormat,
	}
}

func NewCmdStatus() *cobra.Command {
	o := DefaultStatusOptions()
	cmd := &cobra.Command{
		Use:          "status [TASK_ID]",
		Short:        "Query the status of the recorded or given task once",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			o.stdout = cmd.OutOrStdout()
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *StatusOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalStatusOutputTypes, ", ")))
}

func (o *StatusOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.Contains(legalStatusOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalStatusOutputTypes, ", "))
	}
	return nil
}

func (o *StatusOptions) Run(ctx context.Context, args []string) error {
	taskID := ""
	if len(args) == 1 {
		taskID = args[0]
	} else {
		store, err := o.Scratch()
		if err != nil {
			return err
		}
		taskID, err = store.Get(scratch.JobIDKey)
		if errors.Is(err, scratch.ErrNotFound) {
			fmt.Fprintln(o.stdout, "no task recorded")
			return nil
		}
		if err != nil {
			return err
		}
	}

	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	status, err := c.GetTaskStatus(ctx, taskID)
	if err != nil {
		return unauthorizedHint(fmt.Errorf("reading task %s: %w", taskID, err))
	}

	report := StatusReport{
		TaskID: taskID,
		State:  status.State,
		Phase:  string(orchestrator.Classify(status)),
		Detail: status.StatusDetail(),
	}
	return o.print(report)
}

func (o *StatusOptions) print(report StatusReport) error {
	switch o.Output {
	case console.JsonFormat:
		marshalled, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshalling status: %w", err)
		}
		fmt.Fprintf(o.stdout, "%s\n", marshalled)
		return nil
	case console.YamlFormat:
		marshalled, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshalling status: %w", err)
		}
		fmt.Fprintf(o.stdout, "%s", marshalled)
		return nil
	default:
		w := tabwriter.NewWriter(o.stdout, 0, 8, 1, '\t', 0)
		fmt.Fprintln(w, "TASK\tSTATE\tPHASE\tDETAIL")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", report.TaskID, report.State, report.Phase, report.Detail)
		return w.Flush()
	}
}
