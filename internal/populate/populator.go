package populate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"decoyforge/internal/config"
	"decoyforge/internal/consistency"
	"decoyforge/internal/generate"
	"decoyforge/internal/logging"
	"decoyforge/internal/metrics"
	"decoyforge/internal/store"
	"decoyforge/internal/token"
)

// ErrJobInProgress rejects a second population request for a decoy already
// mid-job. The consistency context is job-scoped; interleaved writers would
// corrupt slot agreement.
var ErrJobInProgress = errors.New("population job already in progress for this decoy")

// Populator runs population jobs.
type Populator struct {
	gen   *generate.Generator
	store *store.Store
	cfg   config.PopulateConfig

	mu   sync.Mutex
	jobs map[string]bool // decoyID -> in progress
}

// New builds a populator.
func New(gen *generate.Generator, s *store.Store, cfg config.PopulateConfig) *Populator {
	return &Populator{
		gen:   gen,
		store: s,
		cfg:   cfg,
		jobs:  make(map[string]bool),
	}
}

// Populate fills the decoy's filesystem from the profile. File-level
// failures do not abort the job; the report carries every outcome. On
// cancellation, files already written stay in place.
func (p *Populator) Populate(ctx context.Context, decoyID string, profile *Profile) (*Report, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := p.acquire(decoyID); err != nil {
		return nil, err
	}
	defer p.release(decoyID)

	cc := consistency.Open(decoyID)
	root := filepath.Join(p.cfg.OutputBasePath, decoyID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create decoy root: %w", err)
	}

	report := &Report{
		DecoyID: decoyID,
		JobID:   cc.JobID,
		Profile: profile.Name,
		Root:    root,
		Files:   make([]FileResult, len(profile.Files)),
		Started: time.Now().UTC(),
	}
	plan := planTimestamps(profile.Files, p.cfg.TimestampWindow, report.Started)

	logging.Populate("job %s: populating decoy %s with profile %s (%d files)",
		cc.JobID, decoyID, profile.Name, len(profile.Files))

	maxConcurrent := int64(p.cfg.MaxConcurrent)
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	sem := semaphore.NewWeighted(maxConcurrent)

	var resultMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range profile.Files {
		i, entry := i, entry
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				resultMu.Lock()
				report.Files[i] = FileResult{Path: entry.Path, Status: FileCancelled}
				resultMu.Unlock()
				return nil
			}
			defer sem.Release(1)

			res := p.deployOne(gctx, cc, root, entry, plan[entry.Path])
			resultMu.Lock()
			report.Files[i] = res
			resultMu.Unlock()
			metrics.FilesDeployed.WithLabelValues(res.Status).Inc()
			return nil
		})
	}
	_ = g.Wait()

	cancelled := ctx.Err() != nil
	report.summarize(cancelled)
	report.Finished = time.Now().UTC()

	// Any minted-but-undeployed token tracks a credential that was never
	// planted; deactivate it so the ledger stays honest.
	p.reconcileTokens(cc, report)

	if err := cc.Close(context.WithoutCancel(ctx), p.store); err != nil {
		logging.Populate("job %s: failed to persist context: %v", cc.JobID, err)
	}

	logging.Populate("job %s: %s (%d/%d files deployed)",
		cc.JobID, report.Status, report.Deployed(), len(report.Files))
	return report, nil
}

// deployOne generates one entry and writes it atomically with its planned
// metadata.
func (p *Populator) deployOne(ctx context.Context, cc *consistency.Context, root string, entry Entry, modTime time.Time) FileResult {
	if ctx.Err() != nil {
		return FileResult{Path: entry.Path, Status: FileCancelled}
	}

	res, err := p.gen.Generate(ctx, generate.Request{
		ContentType: entry.ContentType,
		FileType:    entry.FileType,
		Path:        entry.Path,
		Purpose:     entry.Purpose,
		TokenType:   entry.TokenType,
		Context:     cc,
	})
	if err != nil {
		if ctx.Err() != nil {
			return FileResult{Path: entry.Path, Status: FileCancelled, Error: err.Error()}
		}
		logging.Populate("generation failed for %s: %v", entry.Path, err)
		return FileResult{Path: entry.Path, Status: FileFailed, Error: err.Error()}
	}

	mode := os.FileMode(p.cfg.Permissions.Mode(entry.Class))
	target := filepath.Join(root, filepath.FromSlash(entry.Path))
	if err := writeFileAtomic(target, []byte(res.Content), mode, modTime); err != nil {
		logging.Populate("write failed for %s: %v", entry.Path, err)
		return FileResult{Path: entry.Path, Status: FileFailed, Error: err.Error()}
	}

	out := FileResult{
		Path:    entry.Path,
		Status:  FileDeployed,
		Mode:    uint32(mode),
		ModTime: modTime,
		Report:  res.Report,
	}
	if res.Token != nil {
		out.TokenID = res.Token.ID
	}
	return out
}

// writeFileAtomic writes via a temp file and rename so a crash never leaves
// a half-written artifact at the target path.
func writeFileAtomic(target string, data []byte, mode os.FileMode, modTime time.Time) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".deploy-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	if err := os.Chtimes(target, modTime, modTime); err != nil {
		return fmt.Errorf("failed to set timestamps: %w", err)
	}
	return nil
}

// reconcileTokens deactivates tokens minted during the job whose file never
// made it to disk.
func (p *Populator) reconcileTokens(cc *consistency.Context, report *Report) {
	deployed := make(map[string]bool)
	for _, f := range report.Files {
		if f.Status == FileDeployed && f.TokenID != "" {
			deployed[f.TokenID] = true
		}
	}
	for _, id := range cc.TokenIDs() {
		if deployed[id] {
			continue
		}
		if err := p.store.Deactivate(context.Background(), id); err != nil && !errors.Is(err, token.ErrNotFound) {
			logging.Populate("failed to deactivate undeployed token %s: %v", id, err)
		} else {
			logging.Populate("deactivated undeployed token %s", id)
		}
	}
}

func (p *Populator) acquire(decoyID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.jobs[decoyID] {
		return fmt.Errorf("decoy %s: %w", decoyID, ErrJobInProgress)
	}
	p.jobs[decoyID] = true
	return nil
}

func (p *Populator) release(decoyID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.jobs, decoyID)
}
