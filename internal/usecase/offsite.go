package usecase

import (
	"context"
	"os"
	"path/filepath"

	"github.com/semmidev/dbops/internal/domain"
)

type UploadTarget struct {
	Name    string
	Storage domain.Storage
}

// Offsite copies a finished backup to the configured targets, one after the
// other. Failures are logged and never abort the caller; the local backup is
// never touched.
type Offsite struct {
	targets    []UploadTarget
	compressor domain.Compressor
	logger     Logger
	compress   bool
	tempDir    string
}

func NewOffsite(targets []UploadTarget, compressor domain.Compressor, logger Logger, compress bool) *Offsite {
	return &Offsite{
		targets:    targets,
		compressor: compressor,
		logger:     logger,
		compress:   compress,
		tempDir:    os.TempDir(),
	}
}

func (o *Offsite) Ship(ctx context.Context, backupPath string) {
	if len(o.targets) == 0 {
		return
	}

	filePath, filename := backupPath, filepath.Base(backupPath)

	if o.compress {
		filename += o.compressor.Extension()
		compressed := filepath.Join(o.tempDir, filename)

		o.logger.Infof("Compressing %s for offsite copy...", backupPath)
		if err := o.compressor.Compress(backupPath, compressed); err != nil {
			o.logger.Errorf("Compression failed, offsite copy skipped: %v", err)
			os.Remove(compressed)
			return
		}
		defer os.Remove(compressed)
		filePath = compressed
	}

	for _, t := range o.targets {
		o.logger.Infof("Uploading %s to %s...", filename, t.Name)
		if err := t.Storage.Upload(ctx, filePath, filename); err != nil {
			o.logger.Errorf("Failed to upload to %s: %v", t.Name, err)
			continue
		}
		o.logger.Infof("Successfully uploaded to %s", t.Name)
	}
}
