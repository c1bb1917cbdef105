package cmd

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/go-loom/loom/cmd/loom/internal/config"
	"github.com/go-loom/loom/pkg/inspect"
)

func init() {
	RegisterCommand(&Command{
		Name:  "inspect",
		Short: "Stream state events from a running app",
		Long: `Attach to the inspector of a running Loom application and stream
state-graph events to the terminal.

The inspector address is taken from --addr if given, then from the
inspector.addr field of loom.yaml when run inside a project, and
otherwise defaults to ` + config.DefaultInspectorAddr + `.

Examples:
  loom inspect
  loom inspect --addr localhost:9000`,
		Usage: "loom inspect [--addr host:port]",
		Run:   runInspect,
	})
}

func runInspect(args []string) error {
	var addr string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--addr":
			if i+1 >= len(args) {
				return fmt.Errorf("--addr requires a host:port value")
			}
			addr = args[i+1]
			i++
		case strings.HasPrefix(arg, "--addr="):
			addr = strings.TrimPrefix(arg, "--addr=")
		default:
			return fmt.Errorf("unknown argument %q\n\nUsage: loom inspect [--addr host:port]", arg)
		}
	}

	addr = resolveInspectorAddr(addr)

	u := url.URL{Scheme: "ws", Host: addr, Path: "/state/live"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to inspector at %s: %w (is the app running?)", addr, err)
	}
	defer conn.Close()

	// The first frame is the hello carrying the session and client ids.
	var hello struct {
		Session string `json:"session"`
		Client  string `json:"client"`
	}
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("failed to read inspector hello: %w", err)
	}

	fmt.Printf("Attached to session %s\n", hello.Session)
	fmt.Println("Streaming state events (Ctrl+C to stop)...")
	fmt.Println()

	// Handle Ctrl+C gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	interrupted := make(chan struct{})
	go func() {
		<-sigChan
		close(interrupted)
		conn.Close()
	}()

	for {
		var ev inspect.Event
		if err := conn.ReadJSON(&ev); err != nil {
			select {
			case <-interrupted:
				fmt.Println("\nStream stopped.")
				return nil
			default:
				return fmt.Errorf("stream closed: %w", err)
			}
		}
		fmt.Println(formatEvent(ev))
	}
}

// resolveInspectorAddr picks the inspector address: the explicit flag wins,
// then loom.yaml of the enclosing project, then the default.
func resolveInspectorAddr(flagAddr string) string {
	if flagAddr != "" {
		return flagAddr
	}
	root, err := config.FindProjectRoot()
	if err != nil {
		return config.DefaultInspectorAddr
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return config.DefaultInspectorAddr
	}
	return cfg.InspectorAddr
}

// formatEvent renders one event as a terminal line:
//
//	14:03:07.481 #12    changed    value#3 "price"
//	14:03:07.481 #13    dependency computed#5 "total" <- value#3 "price"
//	14:03:07.482 #14    recompute  computed#5 "total" (0.04ms)
func formatEvent(ev inspect.Event) string {
	ts := time.UnixMilli(ev.Timestamp).Format("15:04:05.000")
	line := fmt.Sprintf("%s #%-5d %-10s %s", ts, ev.Seq, ev.Kind, formatObject(ev.Object))
	switch {
	case ev.Dependency != nil:
		line += " <- " + formatObject(*ev.Dependency)
	case ev.Kind == inspect.EventRecompute:
		line += fmt.Sprintf(" (%.2fms)", ev.DurationMs)
	}
	return line
}

func formatObject(o inspect.ObjectRecord) string {
	return fmt.Sprintf("%s#%d %q", o.Kind, o.ID, o.Label)
}
