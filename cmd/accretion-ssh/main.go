package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/rs/zerolog"

	"github.com/tomz197/accretion/internal/config"
	"github.com/tomz197/accretion/internal/draw"
	applog "github.com/tomz197/accretion/internal/logging"
	"github.com/tomz197/accretion/internal/sim"
	"github.com/tomz197/accretion/internal/view"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "accretion-ssh: %v\n", err)
		os.Exit(1)
	}
	logger := applog.New(cfg.LogLevel, os.Stdout)

	// Fail fast on a bad simulation config instead of on the first session.
	simCfg, err := cfg.Simulation.Build()
	if err == nil {
		err = simCfg.Validate()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid simulation config")
	}

	workingDir, _ := os.Getwd()
	logger.Info().
		Str("host", cfg.SSH.Host).
		Str("port", cfg.SSH.Port).
		Str("hostKeyPath", cfg.SSH.HostKeyPath).
		Str("workingDir", workingDir).
		Msg("SSH config")

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		wish.WithMiddleware(
			viewerMiddleware(cfg, simCfg, logger),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Lower latency for key presses.
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Str("address", net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)).Msg("Starting SSH server")
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-done
	logger.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Shutdown error")
	}
}

// viewerMiddleware gives every session its own simulation and viewer.
func viewerMiddleware(cfg *config.Config, simCfg sim.Config, logger zerolog.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			sessLogger := logger.With().
				Str("user", sess.User()).
				Str("remote", sess.RemoteAddr().String()).
				Logger()
			sessLogger.Info().
				Str("terminal", pty.Term).
				Int("width", pty.Window.Width).
				Int("height", pty.Window.Height).
				Msg("New session")

			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			simOpts := append(cfg.Simulation.Options(), sim.WithLogger(sessLogger))
			s, err := sim.New(simCfg, simOpts...)
			if err != nil {
				sessLogger.Error().Err(err).Msg("Failed to create simulation")
				fmt.Fprintln(sess, "Error: could not start the simulation.")
				return
			}

			v := view.New(s, bufio.NewReader(sess), sess, view.Options{
				TermSizeFunc: sizeTracker.getSize,
				FPS:          cfg.View.FPS,
				TimeScale:    cfg.View.TimeScale,
				Scale:        cfg.View.Scale,
				Logger:       &sessLogger,
			})
			if err := v.Run(sess.Context()); err != nil {
				sessLogger.Error().Err(err).Msg("Viewer error")
			}

			sessLogger.Info().Msg("Session ended")
			next(sess)
		}
	}
}

// sizeTracker holds the latest window size reported by the client.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
