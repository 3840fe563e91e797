package usecase

import (
	"time"

	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/service/discord"
	"github.com/rigcse/modbridge/pkg/service/reddit"
)

const (
	DefaultConfirmTimeout  = 15 * time.Second
	DefaultMaxAttempts     = 5
	DefaultTickConcurrency = 4
	DefaultRelayLimit      = 25
)

type UseCases struct {
	repo            interfaces.Repository
	registry        *model.GuildRegistry
	reddit          reddit.Service
	discord         discord.Service
	clock           Clock
	confirmTimeout  time.Duration
	maxAttempts     int
	tickConcurrency int

	Auth       *AuthUseCase
	Action     *ActionUseCase
	Discussion *DiscussionUseCase
	Relay      *RelayUseCase
	Executor   *Executor
	Notifier   *Notifier
}

type Option func(*UseCases)

func WithGuildRegistry(registry *model.GuildRegistry) Option {
	return func(uc *UseCases) {
		uc.registry = registry
	}
}

func WithReddit(svc reddit.Service) Option {
	return func(uc *UseCases) {
		uc.reddit = svc
	}
}

func WithDiscord(svc discord.Service) Option {
	return func(uc *UseCases) {
		uc.discord = svc
	}
}

func WithClock(clock Clock) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithConfirmTimeout bounds how long an overwrite confirmation may take
func WithConfirmTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.confirmTimeout = d
	}
}

// WithMaxAttempts sets the failure count after which an action is dropped. 0 retries forever.
func WithMaxAttempts(n int) Option {
	return func(uc *UseCases) {
		uc.maxAttempts = n
	}
}

// WithTickConcurrency bounds how many due actions run at once
func WithTickConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.tickConcurrency = n
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:            repo,
		registry:        model.NewGuildRegistry(),
		clock:           defaultClock,
		confirmTimeout:  DefaultConfirmTimeout,
		maxAttempts:     DefaultMaxAttempts,
		tickConcurrency: DefaultTickConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.tickConcurrency < 1 {
		uc.tickConcurrency = 1
	}

	uc.Notifier = NewNotifier(uc.discord, uc.registry)
	uc.Notifier.clock = uc.clock
	uc.Executor = NewExecutor(uc.reddit)
	uc.Auth = NewAuthUseCase(uc.registry)
	uc.Action = &ActionUseCase{
		repo:            repo,
		registry:        uc.registry,
		reddit:          uc.reddit,
		executor:        uc.Executor,
		notifier:        uc.Notifier,
		clock:           uc.clock,
		confirmTimeout:  uc.confirmTimeout,
		maxAttempts:     uc.maxAttempts,
		tickConcurrency: uc.tickConcurrency,
		locks:           newKeyLock(),
	}
	uc.Discussion = &DiscussionUseCase{
		repo:     repo,
		registry: uc.registry,
		reddit:   uc.reddit,
		notifier: uc.Notifier,
		clock:    uc.clock,
	}
	uc.Relay = &RelayUseCase{
		repo:     repo,
		registry: uc.registry,
		reddit:   uc.reddit,
		discord:  uc.discord,
		clock:    uc.clock,
		limit:    DefaultRelayLimit,
	}

	return uc
}

// Registry returns the guild configuration in use
func (uc *UseCases) Registry() *model.GuildRegistry {
	return uc.registry
}
