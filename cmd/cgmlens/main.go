package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cgmlens/internal/bootstrap"
	plugindto "cgmlens/internal/modules/plugin/dto"
	"cgmlens/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataPath string

	root := &cobra.Command{
		Use:           "cgmlens",
		Short:         "CGM upload analysis toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataPath, "data", ".", "data directory path")

	root.AddCommand(newTUICmd(&dataPath))
	root.AddCommand(newImportCmd(&dataPath))
	root.AddCommand(newUploadCmd(&dataPath))
	root.AddCommand(newAnalyzeCmd(&dataPath))
	root.AddCommand(newMetricsCmd(&dataPath))
	root.AddCommand(newSessionsCmd(&dataPath))
	root.AddCommand(newDeviceCmd(&dataPath))
	root.AddCommand(newReindexCmd(&dataPath))
	root.AddCommand(newPluginCmd(&dataPath))
	return root
}

func loadApp(dataPath string) (*bootstrap.App, error) {
	cfg, err := config.New(dataPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run cgmlens terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(*dataPath, app)
		},
	}
}

func newImportCmd(dataPath *string) *cobra.Command {
	var title string
	var interval float64

	importCmd := &cobra.Command{
		Use:   "import <csv-path>",
		Short: "Import a CGM export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			out, err := app.ReadingsCLI.Import(context.Background(), args[0], title, interval)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s) slots=%d readings=%d note=%s\n",
				out.Title, out.ID, out.Count, out.Readings, out.NotePath)
			return nil
		},
	}
	importCmd.Flags().StringVar(&title, "title", "", "upload title (optional)")
	importCmd.Flags().Float64Var(&interval, "interval", 5, "sampling interval in minutes")
	return importCmd
}

func newUploadCmd(dataPath *string) *cobra.Command {
	upload := &cobra.Command{Use: "upload", Short: "Upload query commands"}

	upload.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known uploads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			uploads, err := app.ReadingsCLI.ListUploads(context.Background())
			if err != nil {
				return err
			}
			if len(uploads) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no uploads")
				return nil
			}
			for _, u := range uploads {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d readings\n", u.ID, u.DeviceID, u.Title, u.Readings)
			}
			return nil
		},
	})

	var uploadID string
	show := &cobra.Command{
		Use:   "show --id <id>",
		Short: "Show upload details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(uploadID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			u, err := app.ReadingsCLI.GetUpload(context.Background(), uploadID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\ntitle: %s\ndevice: %s\nslots: %d\nreadings: %d\nnote: %s\n",
				u.ID, u.Title, u.DeviceID, u.Count, u.Readings, u.NotePath)
			if !u.StartAt.IsZero() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "range: %s - %s\n",
					u.StartAt.Format("2006-01-02T15:04:05Z07:00"), u.EndAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
	show.Flags().StringVar(&uploadID, "id", "", "upload id")
	upload.AddCommand(show)
	return upload
}

func newAnalyzeCmd(dataPath *string) *cobra.Command {
	var uploadID string
	var withPlugins bool

	analyze := &cobra.Command{
		Use:   "analyze --upload-id <id>",
		Short: "Run instability detectors over an upload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(uploadID) == "" {
				return fmt.Errorf("--upload-id is required")
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			out, err := app.DetectCLI.Analyze(context.Background(), uploadID, withPlugins)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "upload=%s points=%d flagged=%d\n", out.UploadID, out.Points, out.Flagged)
			for _, det := range out.Detectors {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tflagged=%d", det.Name, det.Flagged)
				for _, seg := range det.Segments {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " [%d,%d)", seg.Start, seg.End)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	analyze.Flags().StringVar(&uploadID, "upload-id", "", "upload id")
	analyze.Flags().BoolVar(&withPlugins, "plugins", false, "include detector plugins")
	return analyze
}

func newMetricsCmd(dataPath *string) *cobra.Command {
	var uploadID string
	var applyMask bool
	var low, high float64

	metrics := &cobra.Command{
		Use:   "metrics --upload-id <id>",
		Short: "Compute glucose metrics for an upload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(uploadID) == "" {
				return fmt.Errorf("--upload-id is required")
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			out, err := app.MetricsCLI.Compute(context.Background(), uploadID, applyMask, low, high)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "upload=%s range=%.0f-%.0f points=%d\n", out.UploadID, out.LowBound, out.HighBound, out.Points)
			if out.MaskApplied {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "excluded=%d (instability mask)\n", out.Excluded)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tir=%.1f%% tbr=%.1f%% tar=%.1f%%\n", out.InRange*100, out.BelowRange*100, out.AboveRange*100)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gmi=%.2f%%\n", out.GMI)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mean=%.1f sd=%.1f cv=%.1f%% median=%.1f min=%.1f max=%.1f\n",
				out.Mean, out.SD, out.CV*100, out.Median, out.Min, out.Max)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "report=%s\n", out.ReportPath)
			return nil
		},
	}
	metrics.Flags().StringVar(&uploadID, "upload-id", "", "upload id")
	metrics.Flags().BoolVar(&applyMask, "apply-mask", false, "exclude points flagged by detectors")
	metrics.Flags().Float64Var(&low, "low", 0, "low bound mg/dL (default 70)")
	metrics.Flags().Float64Var(&high, "high", 0, "high bound mg/dL (default 180)")
	return metrics
}

func newSessionsCmd(dataPath *string) *cobra.Command {
	var uploadID string

	sessions := &cobra.Command{
		Use:   "sessions --upload-id <id>",
		Short: "Evaluate sensor sessions for an upload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(uploadID) == "" {
				return fmt.Errorf("--upload-id is required")
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Evaluate(context.Background(), uploadID)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sensor sessions")
				return nil
			}
			for _, s := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s device=%s [%d,%d) readings=%d duration=%.1fd", s.SessionID, s.DeviceID, s.Start, s.End, s.Readings, s.DurationDay)
				if s.MaxKnown {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " max=%.1fd", s.MaxDays)
				}
				if s.EndedEarly {
					_, _ = fmt.Fprint(cmd.OutOrStdout(), " ended-early")
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	sessions.Flags().StringVar(&uploadID, "upload-id", "", "upload id")
	return sessions
}

func newDeviceCmd(dataPath *string) *cobra.Command {
	device := &cobra.Command{Use: "device", Short: "Sensor device policy commands"}

	var deviceID string
	limit := &cobra.Command{
		Use:   "limit --id <device-id>",
		Short: "Look up the wear limit for a device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(deviceID) == "" {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.DeviceLimit(context.Background(), deviceID)
			if err != nil {
				return err
			}
			if !out.Known {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: no known wear limit\n", out.DeviceID)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: max %.1f days\n", out.DeviceID, out.MaxDays)
			return nil
		},
	}
	limit.Flags().StringVar(&deviceID, "id", "", "device id")
	device.AddCommand(limit)

	device.AddCommand(&cobra.Command{
		Use:   "limits",
		Short: "List configured device wear limits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			limits, err := app.SessionCLI.ListLimits(context.Background())
			if err != nil {
				return err
			}
			for _, l := range limits {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.1f days\n", l.Pattern, l.MaxDays)
			}
			return nil
		},
	})
	return device
}

func newReindexCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild SQLite projections from upload notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			if err := app.ReadingsCLI.Reindex(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex completed")
			return nil
		},
	}
}

func newPluginCmd(dataPath *string) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Plugin operations"}
	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plugin manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			plugins, err := app.PluginCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(plugins) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, p := range plugins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t capabilities=%s binary=%s\n",
					p.Name, p.Version, p.Enabled, strings.Join(p.Capabilities, ","), p.Binary)
			}
			return nil
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			results, err := app.PluginCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var commandPluginName string
	commandsCmd := &cobra.Command{
		Use:   "commands --plugin <name>",
		Short: "List commands exposed by a plugin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(commandPluginName) == "" {
				return fmt.Errorf("--plugin is required")
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			commands, err := app.PluginCLI.ListCommands(context.Background(), commandPluginName)
			if err != nil {
				return err
			}
			if len(commands) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no commands")
				return nil
			}
			for _, item := range commands {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s kind=%s timeout_ms=%d title=%q\n", item.ID, item.Kind, item.TimeoutMS, item.Title)
			}
			return nil
		},
	}
	commandsCmd.Flags().StringVar(&commandPluginName, "plugin", "", "plugin name")
	plugin.AddCommand(commandsCmd)

	var execPluginName, execCommandID, execInputJSON, execUploadID string
	execCmd := &cobra.Command{
		Use:   "exec --plugin <name> --command <id>",
		Short: "Execute a plugin command capability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(execPluginName) == "" || strings.TrimSpace(execCommandID) == "" {
				return fmt.Errorf("--plugin and --command are required")
			}
			if err := validateJSONInput(execInputJSON); err != nil {
				return err
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			out, err := app.PluginCLI.Execute(context.Background(), plugindto.ExecuteInput{
				PluginName: execPluginName,
				CommandID:  execCommandID,
				InputJSON:  execInputJSON,
				UploadID:   execUploadID,
				DataPath:   *dataPath,
				Cwd:        *dataPath,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "plugin=%s command=%s exit=%d\n", out.PluginName, out.CommandID, out.ExitCode)
			if strings.TrimSpace(out.Stdout) != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Stdout)
			}
			if strings.TrimSpace(out.Stderr) != "" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), out.Stderr)
			}
			if strings.TrimSpace(out.OutputJSON) != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.OutputJSON)
			}
			return nil
		},
	}
	execCmd.Flags().StringVar(&execPluginName, "plugin", "", "plugin name")
	execCmd.Flags().StringVar(&execCommandID, "command", "", "command id")
	execCmd.Flags().StringVar(&execInputJSON, "input-json", "", "JSON input payload")
	execCmd.Flags().StringVar(&execUploadID, "upload-id", "", "optional upload id")
	plugin.AddCommand(execCmd)

	var detectPluginName, detectValues string
	var detectInterval float64
	detectCmd := &cobra.Command{
		Use:   "detect --plugin <name> --values <v1,v2,...>",
		Short: "Run a detect-capability plugin over a glucose series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(detectPluginName) == "" || strings.TrimSpace(detectValues) == "" {
				return fmt.Errorf("--plugin and --values are required")
			}
			series, err := parseSeries(detectValues)
			if err != nil {
				return err
			}
			app, err := loadApp(*dataPath)
			if err != nil {
				return err
			}
			out, err := app.PluginCLI.Detect(context.Background(), plugindto.DetectInput{
				PluginName:  detectPluginName,
				Series:      series,
				IntervalMin: detectInterval,
			})
			if err != nil {
				return err
			}
			flagged := 0
			for _, v := range out.Mask {
				if v {
					flagged++
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "plugin=%s detector=%s flagged=%d/%d\n", out.PluginName, out.Detector, flagged, len(out.Mask))
			for i, v := range out.Mask {
				if v {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "index %d flagged\n", i)
				}
			}
			return nil
		},
	}
	detectCmd.Flags().StringVar(&detectPluginName, "plugin", "", "plugin name")
	detectCmd.Flags().StringVar(&detectValues, "values", "", "comma-separated mg/dL values, empty entries are gaps")
	detectCmd.Flags().Float64Var(&detectInterval, "interval", 5, "sampling interval in minutes")
	plugin.AddCommand(detectCmd)

	return plugin
}

func validateJSONInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	if !json.Valid([]byte(input)) {
		return fmt.Errorf("--input-json must be valid JSON")
	}
	return nil
}

func parseSeries(raw string) ([]float64, error) {
	tokens := strings.Split(raw, ",")
	series := make([]float64, len(tokens))
	for i, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			series[i] = math.NaN()
			continue
		}
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid series value %q", token)
		}
		series[i] = value
	}
	return series, nil
}
