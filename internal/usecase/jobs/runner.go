package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tscat/internal/domain"
	"tscat/internal/ports"
	"tscat/internal/usecase/translator"
)

const (
	defaultWorkers     = 4
	defaultItemTimeout = 60 * time.Second
)

// Translator is the part of translator.Service the runner needs.
type Translator interface {
	TranslateOne(ctx context.Context, a translator.TranslateArgs) (string, error)
	ProviderName() string
}

type EventEmitter interface {
	Emit(name string, payload any)
}

type Deps struct {
	Jobs         ports.JobRepository
	Files        ports.FileRepository
	Units        ports.UnitRepository
	Translations ports.TranslationRepository
	Log          *slog.Logger
}

type Runner struct {
	d      Deps
	trans  Translator
	mu     sync.Mutex
	active map[int64]context.CancelFunc
	em     EventEmitter
}

func NewRunner(d Deps, trans Translator) *Runner {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Runner{d: d, trans: trans, active: map[int64]context.CancelFunc{}}
}

func (r *Runner) SetEmitter(em EventEmitter) { r.em = em }

type FillParams struct {
	FileID      int64         `json:"file_id"`
	Locale      string        `json:"locale"`
	Model       string        `json:"model"`
	Workers     int           `json:"workers"`
	ItemTimeout time.Duration `json:"item_timeout"`
}

type item struct {
	unit *domain.Unit
}

// Fill machine-translates every unit of a file that has no text for the
// target locale. Results are stored as unfinished so that a reviewer still
// has to accept them. Failures of single items are logged on the job and do
// not stop the run; canceling ctx does.
func (r *Runner) Fill(ctx context.Context, p FillParams) (*domain.Job, error) {
	if p.Locale == "" {
		return nil, errors.New("fill: target locale is required")
	}
	if p.Workers <= 0 {
		p.Workers = defaultWorkers
	}
	if p.ItemTimeout <= 0 {
		p.ItemTimeout = defaultItemTimeout
	}
	f, err := r.d.Files.Get(ctx, p.FileID)
	if err != nil {
		return nil, err
	}
	pending, err := r.pending(ctx, f.ID, p.Locale)
	if err != nil {
		return nil, err
	}

	paramsJSON, _ := json.Marshal(p)
	job := &domain.Job{Type: "fill", Status: domain.JobRunning, FileID: f.ID, ParamsRaw: string(paramsJSON), Total: len(pending)}
	id, err := r.d.Jobs.Create(ctx, job)
	if err != nil {
		return nil, err
	}
	r.emit("job.started", map[string]any{"job_id": id, "total": len(pending), "model": p.Model, "locale": p.Locale})
	r.log(ctx, id, "info", fmt.Sprintf("job started: file=%s locale=%s units=%d workers=%d", f.Path, p.Locale, len(pending), p.Workers))

	cctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.active[id] = cancel
	r.mu.Unlock()
	defer func() {
		cancel()
		r.mu.Lock()
		delete(r.active, id)
		r.mu.Unlock()
	}()

	var (
		mu           sync.Mutex
		done, failed int
	)
	g, gctx := errgroup.WithContext(cctx)
	g.SetLimit(p.Workers)
	for _, it := range pending {
		if gctx.Err() != nil {
			break
		}
		it := it
		g.Go(func() error {
			err := r.fillOne(gctx, f, p, it)
			mu.Lock()
			done++
			if err != nil {
				failed++
			}
			d, fl := done, failed
			mu.Unlock()
			// progress is bookkeeping; the outer context may already be canceled
			_ = r.d.Jobs.UpdateProgress(context.WithoutCancel(ctx), id, d, fl, len(pending), domain.JobRunning)
			if err != nil {
				r.log(ctx, id, "error", fmt.Sprintf("%s/%s -> %s: %v", it.unit.Context, it.unit.Key, p.Locale, err))
			}
			r.emit("job.item.done", map[string]any{"job_id": id, "unit_id": it.unit.ID, "key": it.unit.Key, "locale": p.Locale, "done": d, "total": len(pending), "error": errString(err)})
			return nil
		})
	}
	_ = g.Wait()

	status := domain.JobDone
	switch {
	case cctx.Err() != nil:
		status = domain.JobCanceled
	case failed > 0 && failed == len(pending):
		status = domain.JobFailed
	}
	bg := context.WithoutCancel(ctx)
	if err := r.d.Jobs.UpdateProgress(bg, id, done, failed, len(pending), status); err != nil {
		return nil, err
	}
	r.log(bg, id, "info", fmt.Sprintf("job finished: status=%s done=%d failed=%d", status, done, failed))
	r.emit("job.finished", map[string]any{"job_id": id, "status": status, "done": done, "failed": failed})
	return r.d.Jobs.Get(bg, id)
}

// Cancel stops a running job. It reports false when the job is not running
// in this process.
func (r *Runner) Cancel(jobID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.active[jobID]
	if ok {
		cancel()
	}
	return ok
}

func (r *Runner) pending(ctx context.Context, fileID int64, locale string) ([]item, error) {
	units, err := r.d.Units.ListByFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	trs, err := r.d.Translations.ListByFileLocale(ctx, fileID, locale)
	if err != nil {
		return nil, err
	}
	byUnit := make(map[int64]*domain.Translation, len(trs))
	for _, t := range trs {
		byUnit[t.UnitID] = t
	}
	var out []item
	for _, u := range units {
		if t := byUnit[u.ID]; t != nil {
			if t.Status == domain.TypeObsolete || t.Status == domain.TypeVanished {
				continue
			}
			if strings.TrimSpace(t.Text) != "" {
				continue
			}
		}
		out = append(out, item{unit: u})
	}
	return out, nil
}

func (r *Runner) fillOne(ctx context.Context, f *domain.File, p FillParams, it item) error {
	// Per-item timeout to avoid hangs
	ictx, cancel := context.WithTimeout(ctx, p.ItemTimeout)
	defer cancel()
	txt, err := r.trans.TranslateOne(ictx, translator.TranslateArgs{
		FileID:     f.ID,
		FilePath:   f.Path,
		Unit:       it.unit,
		SourceLang: f.SourceLanguage,
		TargetLang: p.Locale,
		Model:      p.Model,
	})
	if err != nil {
		return err
	}
	tr := &domain.Translation{UnitID: it.unit.ID, Locale: p.Locale, Text: txt, Status: domain.TypeUnfinished, Provider: r.trans.ProviderName()}
	if it.unit.Numerus {
		tr.NumerusForms = []string{txt}
	}
	return r.d.Translations.Upsert(ctx, tr)
}

func (r *Runner) log(ctx context.Context, jobID int64, level, msg string) {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(level))
	r.d.Log.Log(ctx, lvl, msg, "job_id", jobID)
	if err := r.d.Jobs.AddLog(context.WithoutCancel(ctx), &domain.JobLog{JobID: jobID, Level: level, Message: msg}); err != nil {
		r.d.Log.Warn("job log write failed", "job_id", jobID, "error", err)
	}
}

func (r *Runner) emit(name string, payload any) {
	if r.em != nil {
		r.em.Emit(name, payload)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
