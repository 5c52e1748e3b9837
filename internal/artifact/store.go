// Package artifact guarantees that a named model artifact is fully present
// in a local directory before the engine loads it, transferring only the
// files that are missing or mismatched.
package artifact

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"docsearch/internal/domain"
)

// hardWorkerCap bounds the download pool regardless of configuration.
const hardWorkerCap = 8

// File variants accepted by the offline completeness heuristic.
var (
	weightVariants = []string{
		"pytorch_model.bin",
		"model.safetensors",
		"model.bin",
		"model.onnx",
		"onnx/model.onnx",
	}
	tokenizerVariants = []string{
		"tokenizer.json",
		"tokenizer_config.json",
		"vocab.txt",
		"sentencepiece.bpe.model",
		"spiece.model",
	}
)

// Store recovers model artifacts from a remote registry.
type Store struct {
	registry domain.Registry
	workers  int
}

func NewStore(reg domain.Registry, workers int) *Store {
	if workers < 1 {
		workers = 4
	}
	return &Store{registry: reg, workers: workers}
}

// recoveryPlan partitions the manifest against local state.
type recoveryPlan struct {
	missing      []string
	sizeMismatch []string
	unknownSize  []string
	verified     []string
}

// needed returns the files to transfer: missing plus size-mismatched.
// Files with unknown remote size are accepted as-is.
func (p recoveryPlan) needed() []string {
	out := make([]string, 0, len(p.missing)+len(p.sizeMismatch))
	out = append(out, p.missing...)
	out = append(out, p.sizeMismatch...)
	return out
}

// Ensure makes the artifact complete at localDir. Completed transfers stay
// on disk even when the operation fails, so a retry resumes where the last
// attempt stopped.
func (s *Store) Ensure(ctx context.Context, artifactID, localDir string) error {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrProvisioningFailed, localDir, err)
	}
	log.Printf("checking local model completeness: %s -> %s", artifactID, localDir)

	entries, err := s.registry.ListFiles(ctx, artifactID)
	if err != nil {
		// No manifest means no surgical recovery: accept the local copy
		// if the heuristic passes, otherwise re-acquire everything.
		log.Printf("remote completeness check failed for %s: %v", artifactID, err)
		if completeOffline(localDir) {
			log.Printf("offline heuristic says model is complete, skipping download: %s", artifactID)
			return nil
		}
		log.Printf("offline heuristic says model is incomplete, fetching full snapshot: %s", artifactID)
		if err := s.registry.FetchSnapshot(ctx, artifactID, localDir); err != nil {
			return fmt.Errorf("%w: snapshot of %s: %v", domain.ErrProvisioningFailed, artifactID, err)
		}
		log.Printf("download completed (snapshot): %s", artifactID)
		return nil
	}

	plan := planRecovery(localDir, entries)
	need := plan.needed()
	if len(need) == 0 {
		log.Printf("model is complete locally, skipping download: %s", artifactID)
		return nil
	}
	log.Printf("local model incomplete: %d files need sync (missing=%d, size_mismatch=%d, total=%d)",
		len(need), len(plan.missing), len(plan.sizeMismatch), len(entries))

	workers := resolveWorkers(s.workers, len(need))
	log.Printf("[%s] downloading %d files with %d workers", artifactID, len(need), workers)

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, rel := range need {
		rel := rel
		g.Go(func() error {
			if err := s.registry.FetchFile(gctx, artifactID, rel, localDir); err != nil {
				return fmt.Errorf("fetch %s: %w", rel, err)
			}
			done := completed.Add(1)
			log.Printf("[%s] (%d/%d) done %s", artifactID, done, len(need), rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrProvisioningFailed, artifactID, err)
	}
	log.Printf("download completed: %s", artifactID)
	return nil
}

// planRecovery compares each manifest entry against the local directory.
func planRecovery(localDir string, entries []domain.ManifestEntry) recoveryPlan {
	var plan recoveryPlan
	for _, entry := range entries {
		local := filepath.Join(localDir, filepath.FromSlash(entry.Path))
		info, err := os.Stat(local)
		if err != nil {
			plan.missing = append(plan.missing, entry.Path)
			continue
		}
		if entry.Size == domain.SizeUnknown {
			plan.unknownSize = append(plan.unknownSize, entry.Path)
			continue
		}
		if info.Size() != entry.Size {
			plan.sizeMismatch = append(plan.sizeMismatch, entry.Path)
			continue
		}
		plan.verified = append(plan.verified, entry.Path)
	}
	return plan
}

// completeOffline is the fallback check when the registry is unreachable:
// a primary config file plus at least one weight variant and one tokenizer
// variant must exist locally.
func completeOffline(localDir string) bool {
	if !fileExists(filepath.Join(localDir, "config.json")) {
		return false
	}
	return anyExists(localDir, weightVariants) && anyExists(localDir, tokenizerVariants)
}

func anyExists(dir string, candidates []string) bool {
	for _, rel := range candidates {
		if fileExists(filepath.Join(dir, filepath.FromSlash(rel))) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// resolveWorkers bounds the pool by the configured cap, the number of
// files, and the hard cap.
func resolveWorkers(requested, totalFiles int) int {
	if totalFiles <= 0 {
		return 1
	}
	if requested < 1 {
		requested = 1
	}
	workers := requested
	if totalFiles < workers {
		workers = totalFiles
	}
	if workers > hardWorkerCap {
		workers = hardWorkerCap
	}
	return workers
}
