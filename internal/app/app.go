package app

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/audio-recorder/config"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/audio"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/domain/recording/usecases"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/grants"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/kv"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/location"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/logging"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/permission"
	"github.com/doomdagadiggiedahdah/audio-recorder/internal/storage"
)

type App struct {
	Recorder   *usecases.Recorder
	Playback   *usecases.Playback
	Library    *usecases.Library
	Settings   *usecases.Settings
	Locations  *location.Store
	Permission *permission.Prompt
	Capture    *audio.Recorder
	Player     *audio.Player
	Logger     *zap.Logger
}

// New wires the application. in and out are used for the microphone prompt.
func New(cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	logger, err := logging.New(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	store, err := kv.Open(fs, cfg.StatePath())
	if err != nil {
		return nil, err
	}

	broker := grants.NewBroker(store, fs)
	locations := location.NewStore(store, cfg.RecordingsDir)
	resolver := &location.Resolver{
		Store:  locations,
		Broker: broker,
		Fs:     fs,
		Logger: logger.Named("location"),
	}
	router := &storage.Router{Fs: fs, Broker: broker}

	capture := audio.NewRecorder(cfg.FFmpegPath, audio.Input{Format: cfg.InputFormat, Device: cfg.InputDevice})
	player := audio.NewPlayer(cfg.FFplayPath)
	prompt := &permission.Prompt{KV: store, In: in, Out: out}

	recorder := &usecases.Recorder{
		Capturer:         capture,
		Permissions:      prompt,
		Locations:        resolver,
		Sessions:         &usecases.SessionStore{Fs: fs, StateDir: cfg.StateDir},
		Fs:               fs,
		TempDir:          cfg.TempDir(),
		ProgressInterval: cfg.ProgressInterval,
		Logger:           logger.Named("recorder"),
	}

	playback := &usecases.Playback{
		Player:  ffplay{player},
		Loader:  router,
		Fs:      fs,
		TempDir: cfg.TempDir(),
		Logger:  logger.Named("playback"),
	}

	return &App{
		Recorder:   recorder,
		Playback:   playback,
		Library:    &usecases.Library{Locations: resolver, Router: router},
		Settings:   &usecases.Settings{Locations: locations, Broker: broker, Fs: fs},
		Locations:  locations,
		Permission: prompt,
		Capture:    capture,
		Player:     player,
		Logger:     logger,
	}, nil
}

// ffplay adapts audio.Player to the playback use case.
type ffplay struct{ *audio.Player }

func (p ffplay) Load(ctx context.Context, path string) (usecases.Sound, error) {
	s, err := p.Player.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
