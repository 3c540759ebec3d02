package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/san-kum/glcompute/internal/compute"
	"github.com/san-kum/glcompute/internal/config"
	"github.com/san-kum/glcompute/internal/gpu"
	"github.com/san-kum/glcompute/internal/report"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

// app holds the flag values of one command tree and the kernel and device
// opener it runs with.
type app struct {
	configFile string
	backend    string
	format     string
	preset     string
	plot       bool

	kernel compute.Kernel
	open   func(cfg *config.Config) (compute.Device, func(), error)
}

func newApp() *app {
	return &app{kernel: compute.DoubleIndex, open: openDevice}
}

// main runs the built-in kernel when no subcommand is given and maps the
// returned error to the process exit code.
func main() {
	klog.InitFlags(nil)

	cmd := newRootCmd(newApp())
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	os.Exit(run(cmd, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes cmd with args and returns the exit code. Diagnostics go to stderr.
func run(cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err != nil {
		report.WriteError(stderr, err)
	}
	klog.Flush()
	return compute.ExitCode(err)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "glcompute",
		Short:         "dispatch a compute shader on a hidden OpenGL context and print the result",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runDispatch,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path (yaml), overlaid onto the preset")
	rootCmd.PersistentFlags().StringVar(&a.backend, "backend", config.BackendOpenGL, "device backend (opengl, cpu)")
	rootCmd.PersistentFlags().StringVar(&a.format, "format", config.FormatText, "output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&a.preset, "preset", "", "use preset configuration, looked up under --backend (a backend set in --config does not select presets)")
	rootCmd.PersistentFlags().BoolVar(&a.plot, "plot", false, "plot the readback after the data lines")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "print compute limits of the device",
		Args:  cobra.NoArgs,
		RunE:  a.showInfo,
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "run the kernel and compare the readback with the host evaluation",
		Args:  cobra.NoArgs,
		RunE:  a.verifyDispatch,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [backend]",
		Short: "list available presets for a backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Fprintf(out, "no presets for backend: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(infoCmd, verifyCmd, presetsCmd)
	return rootCmd
}

// loadConfig layers defaults, preset, config file and explicit flags, in
// that order. The config file overlays the preset key by key.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if a.preset != "" {
		name := cfg.Backend
		if cmd.Flags().Changed("backend") {
			name = a.backend
		}
		p := config.GetPreset(name, a.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", a.preset, config.ListPresets(name))
		}
		cfg = p
	}

	if a.configFile != "" {
		loaded, err := config.LoadOnto(a.configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("backend") {
		cfg.Backend = a.backend
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = a.format
	}
	if cmd.Flags().Changed("plot") {
		cfg.Output.Plot = a.plot
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	klog.V(1).Infof("config: backend=%s context=%s %dx%d format=%s",
		cfg.Backend, cfg.Context.Version(), cfg.Context.Width, cfg.Context.Height, cfg.Output.Format)
	return cfg, nil
}

// openDevice returns the configured device and the function that tears it down.
func openDevice(cfg *config.Config) (compute.Device, func(), error) {
	if cfg.Backend == config.BackendCPU {
		return compute.NewCPUDevice(), func() {}, nil
	}
	ctx, err := gpu.Open(cfg.Context)
	if err != nil {
		return nil, nil, err
	}
	return ctx, ctx.Close, nil
}

func (a *app) runDispatch(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	dev, closeDevice, err := a.open(cfg)
	if err != nil {
		return err
	}
	defer closeDevice()

	out := cmd.OutOrStdout()
	if cfg.Output.Format == config.FormatText {
		if err := report.WriteVersion(out, dev.Name(), dev.Version()); err != nil {
			return err
		}
	}

	result, err := compute.Run(dev, a.kernel)
	if err != nil {
		return err
	}

	if cfg.Output.Format == config.FormatJSON {
		return report.WriteJSON(out, result)
	}
	if err := report.WriteValues(out, result.Values); err != nil {
		return err
	}
	if cfg.Output.Plot {
		return report.WritePlot(out, result.Values)
	}
	return nil
}

func (a *app) verifyDispatch(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	dev, closeDevice, err := a.open(cfg)
	if err != nil {
		return err
	}
	defer closeDevice()

	_, mismatches, verr := compute.VerifyKernel(dev, a.kernel)
	if verr != nil && mismatches == nil {
		return verr
	}
	if err := report.WriteVerify(cmd.OutOrStdout(), a.kernel.Elements, mismatches); err != nil {
		return err
	}
	return verr
}

func (a *app) showInfo(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	dev, closeDevice, err := a.open(cfg)
	if err != nil {
		return err
	}
	defer closeDevice()

	k := a.kernel
	x, y, z := k.Groups()
	rows := []report.Row{
		{Label: "device", Value: dev.Name()},
		{Label: "version", Value: dev.Version()},
		{Label: "kernel", Value: k.Name},
		{Label: "elements", Value: fmt.Sprint(k.Elements)},
		{Label: "dispatch groups", Value: fmt.Sprintf("%d x %d x %d", x, y, z)},
	}

	if ctx, ok := dev.(*gpu.Context); ok {
		l := ctx.Limits()
		rows = append(rows,
			report.Row{Label: "vendor", Value: l.Vendor},
			report.Row{Label: "renderer", Value: l.Renderer},
			report.Row{Label: "glsl", Value: l.GLSLVersion},
			report.Row{Label: "max work group count", Value: fmt.Sprint(l.MaxWorkGroupCount)},
			report.Row{Label: "max work group size", Value: fmt.Sprint(l.MaxWorkGroupSize)},
			report.Row{Label: "max invocations", Value: fmt.Sprint(l.MaxInvocations)},
			report.Row{Label: "storage bindings", Value: fmt.Sprint(l.MaxStorageBindings)},
		)
	}

	return report.WriteTable(cmd.OutOrStdout(), "glcompute "+cfg.Backend, rows)
}
