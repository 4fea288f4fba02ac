package community

import (
	"context"
	"sort"
	"sync"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/common/log"
)

const (
	// ErrUnknownGuild is returned when submitting a notification for a guild without a worker.
	ErrUnknownGuild = errors.Sentinel("no worker for guild")
	// ErrMailboxFull is returned when a guild's worker is too far behind to accept a notification.
	// The notification is dropped.
	ErrMailboxFull = errors.Sentinel("guild mailbox is full")
)

const defaultMailboxSize = 64

// Registry holds the workers for all guilds the bot is in.
type Registry struct {
	ctx      context.Context
	dispatch Dispatcher
	size     int

	// OnError is called with every error returned by a handler. Errors are always logged.
	OnError func(n Notification, err error)

	mu      sync.Mutex
	workers map[discord.GuildID]*worker
	wg      sync.WaitGroup
}

type worker struct {
	guildID discord.GuildID
	mailbox chan Notification

	// held for reading while sending, so the mailbox is never closed mid-send
	mu     sync.RWMutex
	closed bool
}

// NewRegistry creates a registry. ctx is passed to every handler.
func NewRegistry(ctx context.Context, dispatch Dispatcher, mailboxSize int) *Registry {
	if mailboxSize <= 0 {
		mailboxSize = defaultMailboxSize
	}

	return &Registry{
		ctx:      ctx,
		dispatch: dispatch,
		size:     mailboxSize,
		workers:  make(map[discord.GuildID]*worker),
	}
}

// Join creates a worker for the guild and queues a GuildJoined notification.
// It returns false if the guild already had a worker.
func (r *Registry) Join(guildID discord.GuildID) bool {
	r.mu.Lock()
	if _, ok := r.workers[guildID]; ok {
		r.mu.Unlock()
		return false
	}

	w := &worker{
		guildID: guildID,
		mailbox: make(chan Notification, r.size),
	}
	r.workers[guildID] = w
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(w)

	err := w.send(GuildJoined{GuildID: guildID})
	if err != nil {
		log.Errorf("queueing join notification for %v: %v", guildID, err)
	}
	return true
}

// Leave queues a GuildLeft notification as the worker's last and removes it.
// Notifications submitted after Leave return ErrUnknownGuild.
func (r *Registry) Leave(guildID discord.GuildID) bool {
	r.mu.Lock()
	w, ok := r.workers[guildID]
	delete(r.workers, guildID)
	r.mu.Unlock()

	if !ok {
		return false
	}

	w.close(GuildLeft{GuildID: guildID})
	return true
}

// Submit queues a notification for its guild's worker. It never blocks:
// if the mailbox is full, the notification is dropped and ErrMailboxFull is returned.
func (r *Registry) Submit(n Notification) error {
	r.mu.Lock()
	w, ok := r.workers[n.Guild()]
	r.mu.Unlock()

	if !ok {
		return ErrUnknownGuild
	}
	return w.send(n)
}

// Len returns the number of running workers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

// Guilds returns the IDs of all guilds with a worker, sorted.
func (r *Registry) Guilds() []discord.GuildID {
	r.mu.Lock()
	ids := make([]discord.GuildID, 0, len(r.workers))
	for id := range r.workers {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close stops all workers without queueing GuildLeft, and waits for queued notifications to be handled.
func (r *Registry) Close() {
	r.mu.Lock()
	workers := r.workers
	r.workers = make(map[discord.GuildID]*worker)
	r.mu.Unlock()

	for _, w := range workers {
		w.close(nil)
	}
	r.wg.Wait()
}

func (r *Registry) run(w *worker) {
	defer r.wg.Done()

	for n := range w.mailbox {
		if n.Kind() == KindGuildLeft && r.rejoined(w) {
			log.Debugf("%v was joined again before its worker stopped, not tearing it down", w.guildID)
			continue
		}
		r.handle(n)
	}
	log.Debugf("worker for %v stopped", w.guildID)
}

// rejoined returns true if the guild has a newer worker than w.
func (r *Registry) rejoined(w *worker) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.workers[w.guildID]
	return ok && cur != w
}

func (r *Registry) handle(n Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("panic handling %v in %v: %v", n.Kind(), n.Guild(), rec)
			if r.OnError != nil {
				r.OnError(n, errors.Errorf("panic: %v", rec))
			}
		}
	}()

	fn, ok := r.dispatch[n.Kind()]
	if !ok {
		log.Debugf("no handler for %v", n.Kind())
		return
	}

	err := fn(r.ctx, n)
	if err != nil {
		log.Errorf("handling %v in %v: %v", n.Kind(), n.Guild(), err)
		if r.OnError != nil {
			r.OnError(n, err)
		}
	}
}

func (w *worker) send(n Notification) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrUnknownGuild
	}

	select {
	case w.mailbox <- n:
		return nil
	default:
		return ErrMailboxFull
	}
}

// close stops new sends, then queues final, if not nil, and closes the mailbox.
// The final notification waits for space in the background, the caller never blocks.
func (w *worker) close(final Notification) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	go func() {
		if final != nil {
			w.mailbox <- final
		}
		close(w.mailbox)
	}()
}
