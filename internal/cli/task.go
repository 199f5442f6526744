package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	api "github.com/wannadb/docbase-tasks/api/v1alpha1"
	"github.com/wannadb/docbase-tasks/internal/console"
	"github.com/wannadb/docbase-tasks/internal/events"
	"github.com/wannadb/docbase-tasks/internal/orchestrator"
	"github.com/wannadb/docbase-tasks/internal/server"
)

type TaskOptions struct {
	GlobalOptions

	Kind api.TaskKind

	DocumentIDs           []int
	Attributes            []string
	DocumentName          string
	DocumentFile          string
	NuggetText            string
	StartIndex            int
	EndIndex              int
	InteractiveCallTaskID string

	Output        string
	OutputFile    string
	Interval      time.Duration
	Jitter        time.Duration
	StatusTimeout time.Duration
	ListenAddr    string
	EventsFile    string
	EventsTopic   string
	EventsStdout  bool
	Silent        bool

	bindAll         bool
	documentContent string
	stdout          io.Writer
	stderr          io.Writer
}

func DefaultTaskOptions(kind api.TaskKind) *TaskOptions {
	return &TaskOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Kind:          kind,
		Output:        console.TableFormat,
		Interval:      orchestrator.DefaultInterval,
		StatusTimeout: orchestrator.DefaultStatusTimeout,
	}
}

func commandName(kind api.TaskKind) string {
	return strings.ReplaceAll(strings.ToLower(string(kind)), "_", "-")
}

var taskShorts = map[api.TaskKind]string{
	api.TaskKindCreate:           "Create a document base from documents and attributes",
	api.TaskKindLoad:             "Load an existing document base",
	api.TaskKindInteractive:      "Run the interactive table population of a document base",
	api.TaskKindOrderNuggets:     "Order the nuggets of a document",
	api.TaskKindConfirmMatch:     "Confirm a matched nugget",
	api.TaskKindConfirmCustom:    "Confirm a custom nugget",
	api.TaskKindUpdateAttributes: "Replace the attributes of a document base",
}

// NewCmdTask returns the command running one task kind to completion.
func NewCmdTask(kind api.TaskKind) *cobra.Command {
	o := DefaultTaskOptions(kind)
	cmd := &cobra.Command{
		Use:          commandName(kind) + " BASE_NAME",
		Short:        taskShorts[kind],
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

// NewCmdStart runs any kind given by name, e.g. "start confirm-match BASE".
func NewCmdStart() *cobra.Command {
	o := DefaultTaskOptions("")
	cmd := &cobra.Command{
		Use:          "start KIND BASE_NAME",
		Short:        "Run a task of the given kind",
		Example:      "start update-attributes movies --attributes title,director",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := api.StringToTaskKind(args[0])
			if !ok {
				return fmt.Errorf("unknown task kind %q", args[0])
			}
			o.Kind = kind
			if err := o.Complete(cmd, args[1:]); err != nil {
				return err
			}
			if err := o.Validate(args[1:]); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args[1:])
		},
	}
	o.bindAll = true
	o.Bind(cmd.Flags())
	return cmd
}

func (o *TaskOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	all := o.bindAll
	if all || o.Kind == api.TaskKindCreate {
		fs.IntSliceVar(&o.DocumentIDs, "document-ids", o.DocumentIDs, "Ids of the documents to extract from.")
	}
	if all || o.Kind == api.TaskKindCreate || o.Kind == api.TaskKindUpdateAttributes {
		fs.StringSliceVar(&o.Attributes, "attributes", o.Attributes, "Attributes of the document base, in order.")
	}
	if all || o.needsDocument() {
		fs.StringVar(&o.DocumentName, "document-name", o.DocumentName, "Name of the document.")
		fs.StringVar(&o.DocumentFile, "document-file", o.DocumentFile, "File holding the document text.")
	}
	if all || o.needsNugget() {
		fs.StringVar(&o.NuggetText, "nugget-text", o.NuggetText, "Text of the confirmed nugget.")
		fs.IntVar(&o.StartIndex, "start", o.StartIndex, "Start offset of the nugget in the document.")
		fs.IntVar(&o.EndIndex, "end", o.EndIndex, "End offset of the nugget in the document.")
		fs.StringVar(&o.InteractiveCallTaskID, "interactive-task-id", o.InteractiveCallTaskID, "Id of the interactive task the nugget belongs to.")
	}

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(console.LegalOutputTypes, ", ")))
	fs.StringVar(&o.OutputFile, "output-file", o.OutputFile, "File written by the xlsx output format.")
	fs.DurationVar(&o.Interval, "interval", o.Interval, "Status poll interval.")
	fs.DurationVar(&o.Jitter, "jitter", o.Jitter, "Standard deviation of the poll interval.")
	fs.DurationVar(&o.StatusTimeout, "status-timeout", o.StatusTimeout, "Timeout of a single status query.")
	fs.StringVar(&o.ListenAddr, "listen", o.ListenAddr, "Serve the local status api on this address while polling.")
	fs.StringVar(&o.EventsFile, "events-file", o.EventsFile, "Append task lifecycle events to this file.")
	fs.StringVar(&o.EventsTopic, "events-topic", o.EventsTopic, "Topic recorded on task lifecycle events.")
	fs.BoolVar(&o.EventsStdout, "events-stdout", o.EventsStdout, "Log task lifecycle events.")
	fs.BoolVar(&o.Silent, "silent", o.Silent, "Do not ring the terminal bell.")
}

func (o *TaskOptions) needsDocument() bool {
	return o.Kind == api.TaskKindOrderNuggets || o.needsNugget()
}

func (o *TaskOptions) needsNugget() bool {
	return o.Kind == api.TaskKindConfirmMatch || o.Kind == api.TaskKindConfirmCustom
}

func (o *TaskOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.stdout = cmd.OutOrStdout()
	o.stderr = cmd.ErrOrStderr()

	poll := o.env.Poll
	if !cmd.Flags().Changed("interval") {
		o.Interval = poll.Interval
	}
	if !cmd.Flags().Changed("jitter") {
		o.Jitter = poll.Jitter
	}
	if !cmd.Flags().Changed("status-timeout") {
		o.StatusTimeout = poll.StatusTimeout
	}
	local := o.env.Local
	if !cmd.Flags().Changed("listen") {
		o.ListenAddr = local.ListenAddr
	}
	if !cmd.Flags().Changed("events-file") {
		o.EventsFile = local.EventsFile
	}
	if !cmd.Flags().Changed("events-stdout") {
		o.EventsStdout = local.EventsStdout
	}

	if o.DocumentFile != "" {
		content, err := os.ReadFile(o.DocumentFile)
		if err != nil {
			return fmt.Errorf("failed to read document %s: %w", o.DocumentFile, err)
		}
		o.documentContent = string(content)
	}
	return nil
}

func (o *TaskOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.OrganizationID <= 0 {
		return errors.New("an organization is required, set --organization or DOCBASE_ORGANIZATION_ID")
	}
	if len(o.Output) > 0 && !funk.Contains(console.LegalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(console.LegalOutputTypes, ", "))
	}
	if o.Output == console.XlsxFormat && o.OutputFile == "" {
		return errors.New("the xlsx output format needs --output-file")
	}
	if o.Interval <= 0 {
		return errors.New("the poll interval must be positive")
	}
	return nil
}

func (o *TaskOptions) Run(ctx context.Context, args []string) error {
	svc, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	store, err := o.Scratch()
	if err != nil {
		return err
	}

	sinks := orchestrator.Sinks{
		Progress: console.NewProgressWriter(o.stderr),
		Notifier: console.NewNotifier(o.stderr),
		Display:  console.NewPrinter(o.stdout, o.Output, o.OutputFile),
	}
	if !o.Silent {
		sinks.Audio = console.NewBell(o.stderr)
	}

	opts := []orchestrator.Option{
		orchestrator.WithInterval(o.Interval),
		orchestrator.WithStatusTimeout(o.StatusTimeout),
		orchestrator.WithScratchStore(store),
	}
	if o.Jitter > 0 {
		opts = append(opts, orchestrator.WithTicker(orchestrator.NewJitterTicker(o.Jitter)))
	} else {
		opts = append(opts, orchestrator.WithTicker(orchestrator.NewTicker))
	}

	producer, err := o.eventProducer()
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		opts = append(opts, orchestrator.WithEventPublisher(producer))
	}

	orch := orchestrator.New(svc, sinks, opts...)
	defer orch.Close()

	if o.ListenAddr != "" {
		srv := server.NewServer(o.ListenAddr, orch, svc)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("starting local api: %w", err)
		}
		defer func() { _ = srv.Stop(context.Background()) }()
	}

	h, err := o.start(ctx, orch, args[0])
	if err != nil {
		return unauthorizedHint(err)
	}

	_, err = h.Wait(ctx)
	if errors.Is(err, context.Canceled) {
		zap.S().Named("cli").Infow("interrupted, the task keeps running remotely", "task_id", h.Job().ID)
		return err
	}
	return unauthorizedHint(err)
}

func (o *TaskOptions) start(ctx context.Context, orch *orchestrator.Orchestrator, baseName string) (*orchestrator.Handle, error) {
	switch o.Kind {
	case api.TaskKindCreate:
		return orch.StartCreateJob(ctx, o.OrganizationID, baseName, o.DocumentIDs, o.Attributes)
	case api.TaskKindLoad:
		return orch.StartLoadJob(ctx, o.OrganizationID, baseName)
	case api.TaskKindInteractive:
		return orch.StartInteractiveJob(ctx, o.OrganizationID, baseName)
	case api.TaskKindOrderNuggets:
		return orch.StartOrderNuggetsJob(ctx, o.OrganizationID, baseName, o.DocumentName, o.documentContent)
	case api.TaskKindConfirmMatch:
		return orch.StartConfirmMatchJob(ctx, o.OrganizationID, baseName, o.confirmation())
	case api.TaskKindConfirmCustom:
		return orch.StartConfirmCustomJob(ctx, o.OrganizationID, baseName, o.confirmation())
	case api.TaskKindUpdateAttributes:
		return orch.StartUpdateAttributesJob(ctx, o.OrganizationID, baseName, o.Attributes)
	default:
		return nil, fmt.Errorf("unsupported task kind %q", o.Kind)
	}
}

func (o *TaskOptions) confirmation() orchestrator.NuggetConfirmation {
	return orchestrator.NuggetConfirmation{
		DocumentName:          o.DocumentName,
		DocumentContent:       o.documentContent,
		NuggetText:            o.NuggetText,
		StartIndex:            o.StartIndex,
		EndIndex:              o.EndIndex,
		InteractiveCallTaskID: o.InteractiveCallTaskID,
	}
}

func (o *TaskOptions) eventProducer() (*events.EventProducer, error) {
	opts := []events.ProducerOptions{events.WithSource(o.clientConfig.Service.Server)}
	if o.EventsTopic != "" {
		opts = append(opts, events.WithOutputTopic(o.EventsTopic))
	}

	switch {
	case o.EventsFile != "":
		w, err := events.NewFileWriter(o.EventsFile)
		if err != nil {
			return nil, err
		}
		return events.NewEventProducer(w, opts...), nil
	case o.EventsStdout:
		return events.NewEventProducer(&events.StdoutWriter{}, opts...), nil
	default:
		return nil, nil
	}
}
