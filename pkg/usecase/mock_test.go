package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/repository/memory"
	"github.com/rigcse/modbridge/pkg/service/reddit"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockRedditService is a mock implementation of reddit.Service for testing
type mockRedditService struct {
	mu sync.Mutex

	posts map[string]*reddit.Post

	getPostFn      func(ctx context.Context, link string) (*reddit.Post, error)
	lockPostFn     func(ctx context.Context, link string) error
	unlockPostFn   func(ctx context.Context, link string) error
	listNewPostsFn func(ctx context.Context, subreddit string, limit int) ([]*reddit.Post, error)
	submitFn       func(ctx context.Context, req reddit.SubmitRequest) (*reddit.Post, error)

	getCalls    []string
	lockCalls   []string
	unlockCalls []string
	submitted   []reddit.SubmitRequest
}

func newMockReddit() *mockRedditService {
	return &mockRedditService{posts: make(map[string]*reddit.Post)}
}

// addPost registers a post in subreddit "golang"
func (m *mockRedditService) addPost(link, title string, locked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[link] = &reddit.Post{Title: title, Subreddit: "golang", Locked: locked, URL: link}
}

func (m *mockRedditService) GetPost(ctx context.Context, link string) (*reddit.Post, error) {
	m.mu.Lock()
	m.getCalls = append(m.getCalls, link)
	fn := m.getPostFn
	post, ok := m.posts[link]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, link)
	}
	if !ok {
		return nil, reddit.ErrPostNotFound
	}
	copied := *post
	return &copied, nil
}

func (m *mockRedditService) LockPost(ctx context.Context, link string) error {
	m.mu.Lock()
	m.lockCalls = append(m.lockCalls, link)
	fn := m.lockPostFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, link)
	}
	return nil
}

func (m *mockRedditService) UnlockPost(ctx context.Context, link string) error {
	m.mu.Lock()
	m.unlockCalls = append(m.unlockCalls, link)
	fn := m.unlockPostFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, link)
	}
	return nil
}

func (m *mockRedditService) ListNewPosts(ctx context.Context, subreddit string, limit int) ([]*reddit.Post, error) {
	if m.listNewPostsFn != nil {
		return m.listNewPostsFn(ctx, subreddit, limit)
	}
	return nil, nil
}

func (m *mockRedditService) SubmitSelfPost(ctx context.Context, req reddit.SubmitRequest) (*reddit.Post, error) {
	m.mu.Lock()
	m.submitted = append(m.submitted, req)
	m.mu.Unlock()

	if m.submitFn != nil {
		return m.submitFn(ctx, req)
	}
	return &reddit.Post{
		ID:        "new1",
		FullID:    "t3_new1",
		Title:     req.Title,
		Body:      req.Body,
		Permalink: "/r/" + req.Subreddit + "/comments/new1/discussion/",
		Subreddit: req.Subreddit,
	}, nil
}

func (m *mockRedditService) lockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lockCalls)
}

func (m *mockRedditService) unlockCalled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.unlockCalls...)
}

func (m *mockRedditService) getCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.getCalls)
}

type sentMessage struct {
	ChannelID string
	Content   string
	Embeds    []*discordgo.MessageEmbed
}

// mockDiscordService is a mock implementation of discord.Service for testing
type mockDiscordService struct {
	mu      sync.Mutex
	sent    []sentMessage
	sendErr error
}

func (m *mockDiscordService) SendMessage(ctx context.Context, channelID, content string, embeds ...*discordgo.MessageEmbed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, Content: content, Embeds: embeds})
	return nil
}

func (m *mockDiscordService) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

// titles returns the first embed title of every sent message
func (m *mockDiscordService) titles() []string {
	var titles []string
	for _, msg := range m.messages() {
		if len(msg.Embeds) > 0 {
			titles = append(titles, msg.Embeds[0].Title)
		}
	}
	return titles
}

// failingRepository wraps the memory repository and injects store errors
type failingRepository struct {
	*memory.Memory
	actions *failingActionRepository
}

type failingActionRepository struct {
	interfaces.ScheduledActionRepository
	createErr  error
	findErr    error
	deleteErr  error
	replaceErr error
}

func newFailingRepository() *failingRepository {
	mem := memory.New()
	return &failingRepository{
		Memory:  mem,
		actions: &failingActionRepository{ScheduledActionRepository: mem.ScheduledAction()},
	}
}

func (r *failingRepository) ScheduledAction() interfaces.ScheduledActionRepository {
	return r.actions
}

func (r *failingActionRepository) Create(ctx context.Context, action *model.ScheduledAction) (*model.ScheduledAction, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.ScheduledActionRepository.Create(ctx, action)
}

func (r *failingActionRepository) Find(ctx context.Context, filter interfaces.ScheduledActionFilter) ([]*model.ScheduledAction, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.ScheduledActionRepository.Find(ctx, filter)
}

func (r *failingActionRepository) Delete(ctx context.Context, id model.ScheduledActionID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.ScheduledActionRepository.Delete(ctx, id)
}

func (r *failingActionRepository) Replace(ctx context.Context, oldID model.ScheduledActionID, action *model.ScheduledAction) (*model.ScheduledAction, error) {
	if r.replaceErr != nil {
		return nil, r.replaceErr
	}
	return r.ScheduledActionRepository.Replace(ctx, oldID, action)
}

func testRegistry() *model.GuildRegistry {
	reg := model.NewGuildRegistry()
	reg.Register(&model.GuildEntry{
		ID:               "G1",
		Name:             "test guild",
		Subreddit:        "golang",
		ModeratorRoleIDs: []string{"R-mod"},
		LogChannelIDs:    []string{"C-log"},
		Relay:            model.RelayConfig{ChannelID: "C-relay"},
		Discussion:       model.DiscussionConfig{FlairID: "flair-1"},
	})
	return reg
}
