// Command fifo is the reference trigger listener. It follows a text file and
// reports one event per appended line, so any hotkey daemon can drive the
// tracker with `echo Work >> ~/.activitylog/triggers`.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-plugin"

	triggerrpc "activitylog/internal/modules/trigger/adapter/out/rpc"
	"activitylog/internal/modules/trigger/domain"
)

const defaultFile = "triggers"

// follower tracks the read offset into the watched file. Lines present before
// Configure are ignored.
type follower struct {
	mu      sync.Mutex
	path    string
	offset  int64
	partial string
	now     func() time.Time
}

func newFollower() *follower {
	return &follower{now: time.Now}
}

func (f *follower) GetMetadata(context.Context, *triggerrpc.Empty) (*triggerrpc.Metadata, error) {
	return &triggerrpc.Metadata{Name: "fifo", Version: "1.0.0"}, nil
}

func (f *follower) Configure(_ context.Context, in *triggerrpc.ConfigureRequest) (*triggerrpc.Empty, error) {
	path := in.Settings["path"]
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home: %w", err)
		}
		path = filepath.Join(home, ".activitylog", defaultFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create trigger dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trigger file: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat trigger file: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = path
	f.offset = info.Size()
	f.partial = ""
	return &triggerrpc.Empty{}, nil
}

func (f *follower) Poll(context.Context, *triggerrpc.Empty) (*triggerrpc.PollResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.path == "" {
		return nil, fmt.Errorf("listener is not configured")
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open trigger file: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat trigger file: %w", err)
	}
	if info.Size() < f.offset {
		// Truncated: start over.
		f.offset, f.partial = 0, ""
	}
	if info.Size() == f.offset {
		return &triggerrpc.PollResponse{}, nil
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek trigger file: %w", err)
	}
	chunk, err := io.ReadAll(io.LimitReader(file, info.Size()-f.offset))
	if err != nil {
		return nil, fmt.Errorf("read trigger file: %w", err)
	}
	f.offset += int64(len(chunk))

	text := f.partial + string(chunk)
	lines := strings.Split(text, "\n")
	f.partial = lines[len(lines)-1]

	stamp := f.now()
	resp := &triggerrpc.PollResponse{}
	for _, line := range lines[:len(lines)-1] {
		event, ok := domain.ParseLine(line)
		if !ok {
			continue
		}
		resp.Events = append(resp.Events, triggerrpc.TriggerEvent{Action: string(event.Action), Name: event.Name, At: stamp})
	}
	return resp, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: triggerrpc.HandshakeConfig,
		Plugins:         triggerrpc.PluginMap(newFollower()),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
