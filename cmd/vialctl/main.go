package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seagrayinc/vialctl/internal/config"
	"github.com/seagrayinc/vialctl/internal/hid"
	"github.com/seagrayinc/vialctl/internal/keyboard"
	"github.com/seagrayinc/vialctl/internal/rawusb"
	"github.com/seagrayinc/vialctl/internal/via"
)

const usage = `usage: vialctl [-config file] [-device path] <command>

commands:
  list              enumerate configurable keyboards
  dump              reload the device and print its layout as JSON
  save <file>       reload the device and save its layout to a file
  restore <file>    push a saved layout back to the device
  unlock            run the hold-to-unlock sequence
  lock              re-lock the device
`

func main() {
	configPath := flag.String("config", "", "path to config file")
	devicePath := flag.String("device", "", "open a specific device path")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vialctl: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	if err := run(ctx, cfg, logger, *devicePath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "vialctl: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, devicePath string, args []string) error {
	mgr, err := hid.NewManager()
	if err != nil {
		return err
	}

	if args[0] == "list" {
		return listDevices(mgr, cfg)
	}

	tr, closer, err := openTransport(mgr, cfg, devicePath)
	if err != nil {
		return err
	}
	defer closer()

	client := via.NewClient(tr, via.WithLogger(logger))
	kb := keyboard.New(client, logger)

	switch args[0] {
	case "dump":
		return dump(ctx, kb)
	case "save":
		if len(args) < 2 {
			return fmt.Errorf("save: missing file argument")
		}
		return save(ctx, kb, args[1])
	case "restore":
		if len(args) < 2 {
			return fmt.Errorf("restore: missing file argument")
		}
		return restore(ctx, kb, args[1])
	case "unlock":
		return unlock(ctx, kb)
	case "lock":
		return client.Lock(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func matches(info hid.Info, cfg *config.Config) bool {
	if info.IsVial() {
		return true
	}
	for _, d := range cfg.Devices {
		if info.VendorID == d.VendorID && info.ProductID == d.ProductID {
			return true
		}
	}
	return false
}

func listDevices(mgr hid.Manager, cfg *config.Config) error {
	infos, err := mgr.List()
	if err != nil {
		return err
	}
	for _, info := range infos {
		if !matches(info, cfg) {
			continue
		}
		fmt.Printf("%04x:%04x  %-24s %-24s %s\n",
			info.VendorID, info.ProductID, info.Manufacturer, info.Product, info.Path)
	}
	return nil
}

func openTransport(mgr hid.Manager, cfg *config.Config, devicePath string) (via.Transport, func(), error) {
	if cfg.RawUSB {
		d := cfg.Devices[0]
		dev, err := rawusb.Open(d.VendorID, d.ProductID)
		if err != nil {
			return nil, nil, err
		}
		return dev, func() { dev.Close() }, nil
	}

	infos, err := mgr.List()
	if err != nil {
		return nil, nil, err
	}
	for _, info := range infos {
		if devicePath != "" {
			if info.Path != devicePath {
				continue
			}
		} else if !matches(info, cfg) {
			continue
		}
		dev, err := mgr.Open(info)
		if err != nil {
			return nil, nil, err
		}
		return dev, func() { dev.Close() }, nil
	}
	return nil, nil, fmt.Errorf("no matching keyboard found")
}

func dump(ctx context.Context, kb *keyboard.Keyboard) error {
	st, err := kb.Reload(ctx)
	if err != nil {
		return err
	}
	name := "unknown"
	if st.Definition != nil {
		name = st.Definition.Name
	}
	fmt.Printf("# %s  uid=%s  via=%d vial=%d  %dx%d layers=%d encoders=%d\n",
		name, st.UID, st.ViaProtocol, st.VialProtocol,
		st.Rows, st.Cols, st.Layers, st.EncoderCount)

	l, err := kb.SaveLayout()
	if err != nil {
		return err
	}
	data, err := keyboard.MarshalLayout(l)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func save(ctx context.Context, kb *keyboard.Keyboard, path string) error {
	if _, err := kb.Reload(ctx); err != nil {
		return err
	}
	l, err := kb.SaveLayout()
	if err != nil {
		return err
	}
	data, err := keyboard.MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func restore(ctx context.Context, kb *keyboard.Keyboard, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	l, err := keyboard.UnmarshalLayout(data)
	if err != nil {
		return err
	}
	// Reload first: restore clamps the saved layout to the live device's
	// reported capacities.
	if _, err := kb.Reload(ctx); err != nil {
		return err
	}
	return kb.Restore(ctx, l)
}

func unlock(ctx context.Context, kb *keyboard.Keyboard) error {
	client := kb.Client()
	st, err := client.GetUnlockStatus(ctx)
	if err != nil {
		return err
	}
	if st.Unlocked {
		fmt.Println("already unlocked")
		return nil
	}
	if err := client.UnlockStart(ctx); err != nil {
		return err
	}
	if len(st.Keys) > 0 {
		fmt.Print("hold:")
		for _, k := range st.Keys {
			fmt.Printf(" (%d,%d)", k[0], k[1])
		}
		fmt.Println()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
		st, err = client.UnlockPoll(ctx)
		if err != nil {
			return err
		}
		if st.Unlocked {
			fmt.Println("unlocked")
			return nil
		}
		if !st.InProgress {
			return fmt.Errorf("unlock aborted by device")
		}
	}
}
