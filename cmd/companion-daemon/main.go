package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	log "log/slog"

	"companion/internal/audio"
	"companion/internal/chat"
	"companion/internal/companion"
	"companion/internal/config"
	"companion/internal/ipc"
	"companion/internal/kv"
	"companion/internal/notify"
	"companion/internal/proxy"
	"companion/internal/pulse"
	"companion/internal/speech"
	"companion/internal/tts"
	"companion/pkg/audioconv"
	"companion/pkg/stt"
)

func main() {
	cfg, err := config.Load("companion-daemon", os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: cfg.Level(),
	})))

	log.Info("Booting up")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("Failed to open store", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	log.Debug("Loaded store", "store", cfg.Store)

	httpClient, err := proxy.NewClient(cfg.Proxy)
	if err != nil {
		log.Error("Failed to set up socks proxy", "proxy", cfg.Proxy, "err", err)
		os.Exit(1)
	}

	transport := chat.SelectTransport(chat.Backends{
		BaseURL:        cfg.BaseURL,
		AnthropicKey:   cfg.AnthropicKey,
		AnthropicModel: cfg.AnthropicModel,
		OpenAIKey:      cfg.OpenAIKey,
		OpenAIModel:    cfg.OpenAIModel,
		OpenAIBaseURL:  cfg.OpenAIBaseURL,
		Client:         httpClient,
	})

	rec, closeRec := openRecognizer(ctx, cfg)
	defer closeRec()

	syn := tts.New()
	defer syn.Close()

	svc := companion.New(companion.Options{
		Store:       store,
		Transport:   transport,
		Recognizer:  rec,
		Synthesizer: syn,
		Notifier:    &notify.Toaster{Desktop: cfg.Desktop},
		VoiceName:   cfg.Voice,
	})
	defer svc.Close()

	srv, err := ipc.Listen(cfg.Socket, svc)
	if err != nil {
		log.Error("Failed ipc server", "socket", cfg.Socket, "err", err)
		os.Exit(1)
	}

	log.Info("Boot up - successful", "socket", srv.Addr())

	if err := srv.Serve(ctx); err != nil {
		log.Error("IPC server stopped", "err", err)
	}
	log.Info("Shutting down")
}

func openStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return kv.NewMemory(), nil
	case config.StoreRedis:
		return kv.OpenRedis(ctx, kv.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return kv.OpenSQLite(cfg.DBPath)
	}
}

// openRecognizer builds the capture pipeline. Any failure leaves the daemon
// without speech input rather than stopping it.
func openRecognizer(ctx context.Context, cfg *config.Config) (speech.Recognizer, func()) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.STT == config.STTNone {
		log.Info("Speech input disabled")
		return nil, cleanup
	}

	var engine speech.Engine
	switch cfg.STT {
	case config.STTGoogle:
		g, err := stt.NewGoogle(ctx, cfg.Language)
		if err != nil {
			log.Warn("Cloud speech unavailable", "err", err)
			return nil, cleanup
		}
		closers = append(closers, func() { g.Close() })
		engine = g
	default:
		w, err := stt.NewWhisper(cfg.WhisperModel, stt.Options{Language: cfg.Language})
		if err != nil {
			log.Warn("Whisper unavailable", "model", cfg.WhisperModel, "err", err)
			return nil, cleanup
		}
		closers = append(closers, func() { w.Close() })
		engine = w
	}

	p := &speech.Pipeline{Engine: engine}

	if cfg.AudioFile != "" {
		p.Source = &audioconv.FileSource{Path: cfg.AudioFile}
	} else {
		mic, err := audio.Open()
		if err != nil {
			log.Warn("Microphone unavailable", "err", err)
			return nil, cleanup
		}
		closers = append(closers, func() { mic.Close() })
		p.Source = mic

		if d := pulse.NewDucker([]string{"companion-daemon", "espeak-ng"}, 10); d.Available() {
			p.Ducker = d
		}
	}

	if cfg.Earcon != "" {
		p.Cue = notify.NewEarcon(cfg.Earcon).Play
	}

	log.Debug("Loaded recognizer", "stt", cfg.STT)
	return p, cleanup
}
