package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jamesaloy3/hospitality-outlook/internal/attrs"
	"github.com/jamesaloy3/hospitality-outlook/internal/ledger"
	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

// Reconciler drives one ingestion run: it classifies every PDF under the
// watched folder against the ledger, pushes NEW and CHANGED documents through
// upload, extraction and index attach, retries attaches that failed on a
// previous run, and detaches superseded or locally deleted documents.
//
// Documents are processed strictly in lexical rel-path order and one at a
// time. A per-document failure is recorded and the batch continues; only
// context cancellation, checked between documents, stops a run early.
type Reconciler struct {
	Fingerprint Fingerprint
	Store       *ledger.Store
	Uploader    model.Uploader
	Extractor   model.Extractor
	Sync        model.IndexSync
	Runs        model.RunStore // optional
	Pages       PageCounter
	Log         *zap.SugaredLogger
	Now         func() time.Time
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func (r *Reconciler) pages() PageCounter {
	if r.Pages != nil {
		return r.Pages
	}
	return PDFPageCount
}

// Run reconciles folder against the ledger. allowReset forwards the explicit
// corruption-recovery flag to the ledger load. The returned summary is also
// written to the run-history store when one is configured.
func (r *Reconciler) Run(ctx context.Context, folder string, allowReset bool) (model.RunSummary, error) {
	sum := model.RunSummary{
		RunID:     uuid.NewString(),
		Folder:    folder,
		StartedAt: r.now(),
	}

	led, err := r.Store.Load(allowReset)
	if err != nil {
		return sum, err
	}

	indexID, err := r.Sync.EnsureIndex(ctx, led.RemoteIndexID)
	if err != nil {
		return sum, &model.IndexSyncError{Op: "ensure", Cause: err}
	}
	if indexID != led.RemoteIndexID {
		led.RemoteIndexID = indexID
		if err := r.Store.Save(led); err != nil {
			return sum, err
		}
	}

	files, err := Discover(folder, r.pages())
	if err != nil {
		return sum, err
	}
	r.Log.Infow("reconcile start", "run_id", sum.RunID, "folder", folder, "files", len(files))

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		seen[f.RelPath] = true
		out := r.reconcileFile(ctx, led, indexID, folder, f)
		sum.Documents = append(sum.Documents, out)
		switch out.Outcome {
		case model.OutcomeNew:
			sum.New++
		case model.OutcomeChanged:
			sum.Changed++
		case model.OutcomeSkipped:
			sum.Skipped++
		case model.OutcomeFailed:
			sum.Failed++
		}
		if err := r.Store.Save(led); err != nil {
			return sum, err
		}
	}

	detached, err := r.reconcileMembership(ctx, led, indexID, seen)
	sum.Detached = detached
	if err != nil {
		return sum, err
	}
	if err := r.Store.Save(led); err != nil {
		return sum, err
	}

	sum.FinishedAt = r.now()
	r.Log.Infow("reconcile done",
		"run_id", sum.RunID,
		"new", sum.New, "changed", sum.Changed, "skipped", sum.Skipped,
		"failed", sum.Failed, "detached", sum.Detached)

	if r.Runs != nil {
		if err := r.Runs.RecordRun(ctx, sum); err != nil {
			r.Log.Warnw("run history write failed", "run_id", sum.RunID, "error", err)
		}
	}
	return sum, nil
}

func (r *Reconciler) reconcileFile(ctx context.Context, led *model.Ledger, indexID, folder string, f DiscoveredFile) model.DocumentOutcome {
	out := model.DocumentOutcome{RelPath: f.RelPath}

	if f.Err != "" {
		led.RecordFailure(f.RelPath, f.Err)
		out.Outcome = model.OutcomeFailed
		out.Detail = f.Err
		r.Log.Warnw("document failed", "rel_path", f.RelPath, "error", f.Err)
		return out
	}

	hash, err := HashFile(f.AbsPath)
	if err != nil {
		led.RecordFailure(f.RelPath, err.Error())
		out.Outcome = model.OutcomeFailed
		out.Detail = err.Error()
		return out
	}
	docID := r.Fingerprint.DocumentID(f.RelPath, hash)
	out.DocumentID = docID

	if rec, ok := led.Documents[docID]; ok && !rec.Superseded {
		// Same identity. With content-only keying a rename lands here;
		// track the new path without any remote traffic.
		if rec.RelPath != f.RelPath {
			rec.RelPath = f.RelPath
			led.Upsert(rec)
			out.Detail = "renamed"
		}
		if !rec.IndexMember && rec.RemoteFileID != "" {
			if err := r.Sync.Attach(ctx, rec.RemoteFileID, indexID); err != nil {
				led.RecordFailure(f.RelPath, err.Error())
				out.Outcome = model.OutcomeFailed
				out.Detail = fmt.Sprintf("attach retry: %v", err)
				r.Log.Warnw("attach retry failed", "rel_path", f.RelPath, "error", err)
				return out
			}
			rec.IndexMember = true
			led.Upsert(rec)
			led.ClearFailure(f.RelPath)
			out.Outcome = model.OutcomeSkipped
			out.Detail = "attach retried"
			r.Log.Infow("attach retried", "rel_path", f.RelPath, "remote_file_id", rec.RemoteFileID)
			return out
		}
		out.Outcome = model.OutcomeSkipped
		return out
	}

	prev, hadPrev := led.ActiveByPath(f.RelPath)
	outcome := model.OutcomeNew
	if hadPrev {
		outcome = model.OutcomeChanged
	}

	rec, err := r.ingestDocument(ctx, indexID, f, docID, hash)
	if err != nil {
		led.RecordFailure(f.RelPath, err.Error())
		out.Outcome = model.OutcomeFailed
		out.Detail = err.Error()
		r.Log.Warnw("document failed", "rel_path", f.RelPath, "error", err)
		return out
	}

	led.Upsert(rec)
	if hadPrev {
		led.MarkSuperseded(prev.DocumentID, r.now())
	}
	led.ClearFailure(f.RelPath)
	out.Outcome = outcome
	if !rec.IndexMember {
		out.Detail = "attach pending"
	}
	r.Log.Infow("document ingested",
		"rel_path", f.RelPath, "document_id", docID,
		"outcome", string(outcome), "index_member", rec.IndexMember)
	return out
}

// ingestDocument runs the upload → extract → attach sequence for one NEW or
// CHANGED document. An attach failure still yields a record: it keeps its
// extraction and its remote file id with index_member=false, so the next run
// retries the attach without re-extracting.
func (r *Reconciler) ingestDocument(ctx context.Context, indexID string, f DiscoveredFile, docID, hash string) (model.DocumentRecord, error) {
	remoteID, err := r.Uploader.Upload(ctx, f.AbsPath)
	if err != nil {
		return model.DocumentRecord{}, fmt.Errorf("upload %s: %w", f.RelPath, err)
	}

	raw, err := r.Extractor.Extract(ctx, remoteID, filepath.Base(f.RelPath))
	if err != nil {
		return model.DocumentRecord{}, &model.ExtractionError{RelPath: f.RelPath, DocumentID: docID, Cause: err}
	}
	set := attrs.Normalize(raw, filepath.Base(f.RelPath))
	if err := attrs.Validate(set); err != nil {
		return model.DocumentRecord{}, &model.ExtractionError{RelPath: f.RelPath, DocumentID: docID, Cause: err}
	}

	rec := model.DocumentRecord{
		DocumentID:   docID,
		RelPath:      f.RelPath,
		ContentHash:  hash,
		SizeBytes:    f.SizeBytes,
		PageCount:    f.PageCount,
		RemoteFileID: remoteID,
		Attributes:   set,
		IngestedAt:   r.now(),
	}
	if err := r.Sync.Attach(ctx, remoteID, indexID); err != nil {
		r.Log.Warnw("attach failed", "rel_path", f.RelPath, "remote_file_id", remoteID, "error", err)
		return rec, nil
	}
	rec.IndexMember = true
	return rec, nil
}

// reconcileMembership detaches every record that is still an index member but
// is superseded or whose file no longer exists locally. Detach failures leave
// the membership flag set so the next run tries again.
func (r *Reconciler) reconcileMembership(ctx context.Context, led *model.Ledger, indexID string, seen map[string]bool) (int, error) {
	detached := 0
	for _, rec := range led.SortedRecords() {
		if !rec.IndexMember {
			continue
		}
		if !rec.Superseded && seen[rec.RelPath] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return detached, err
		}
		if err := r.Sync.Detach(ctx, rec.RemoteFileID, indexID); err != nil {
			r.Log.Warnw("detach failed", "rel_path", rec.RelPath, "remote_file_id", rec.RemoteFileID, "error", err)
			continue
		}
		rec.IndexMember = false
		led.Upsert(rec)
		detached++
		r.Log.Infow("detached", "rel_path", rec.RelPath, "remote_file_id", rec.RemoteFileID)
	}
	return detached, nil
}
