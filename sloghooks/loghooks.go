package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/optisync"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery     uint64
	DuplicateAddEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

// Hooks logs collection and prefetch anomalies through slog. Duplicate adds
// and self-heals are sampled; everything else logs every occurrence.
type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	dupAddCtr   atomic.Uint64
}

var _ optisync.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) DuplicateAdd(ns, id string) {
	if h.l == nil || !sample(h.opts.DuplicateAddEvery, &h.dupAddCtr) {
		return
	}
	h.l.Debug("optisync.duplicate_add",
		"ns", ns,
		"id", id)
}

func (h *Hooks) UpdateMiss(ns, id string) {
	if h.l == nil {
		return
	}
	h.l.Debug("optisync.update_miss",
		"ns", ns,
		"id", id)
}

func (h *Hooks) RemoveMiss(ns, id string) {
	if h.l == nil {
		return
	}
	h.l.Debug("optisync.remove_miss",
		"ns", ns,
		"id", id)
}

func (h *Hooks) ReplaceRejected(ns, id string) {
	if h.l == nil {
		return
	}
	h.l.Warn("optisync.replace_rejected",
		"ns", ns,
		"id", id)
}

func (h *Hooks) PrefetchSelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("optisync.prefetch_self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) PrefetchSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("optisync.prefetch_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) RevSnapshotError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("optisync.rev_snapshot_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) RevBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("optisync.rev_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}
