package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/semmidev/dbops/internal/domain"
)

const (
	UpgradeTable  = "Banner"
	UpgradeColumn = "targetId"
	UpgradeType   = "varchar(191) NULL"

	DefaultBackupDir = "/root"
	backupPrefix     = "backup_banner_"
	backupLayout     = "2006-01-02_150405"
)

// BackupPath names the dump file for a run started at now, in local time.
func BackupPath(dir string, now time.Time) string {
	return filepath.Join(dir, backupPrefix+now.Local().Format(backupLayout)+".sql")
}

// Upgrade widens Banner.targetId after taking a dump of the table. Every
// step is fatal on error and nothing is rolled back; the dump is the
// recovery path.
type Upgrade struct {
	db        domain.Database
	out       io.Writer
	logger    Logger
	offsite   *Offsite
	backupDir string
	now       func() time.Time
}

func NewUpgrade(db domain.Database, out io.Writer, logger Logger, offsite *Offsite) *Upgrade {
	return &Upgrade{
		db:        db,
		out:       out,
		logger:    logger,
		offsite:   offsite,
		backupDir: DefaultBackupDir,
		now:       time.Now,
	}
}

func (uc *Upgrade) Execute(ctx context.Context) error {
	p := &printer{w: uc.out}

	backup := BackupPath(uc.backupDir, uc.now())
	uc.logger.Infof("[%s] Dumping table %s to %s", uc.db.GetName(), UpgradeTable, backup)
	if err := uc.db.DumpTable(ctx, UpgradeTable, backup); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	p.println("BACKUP_FILE=" + backup)

	if uc.offsite != nil {
		uc.offsite.Ship(ctx, backup)
	}

	showColumns := "SHOW FULL COLUMNS FROM " + UpgradeTable
	steps := []struct {
		name   string
		header string
		sql    string
	}{
		{"before", "BEFORE: " + showColumns, showColumns + ";"},
		{
			"alter",
			fmt.Sprintf("ALTER: %s -> %s", UpgradeColumn, UpgradeType),
			fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s;", UpgradeTable, UpgradeColumn, UpgradeType),
		},
		{"after", "AFTER: " + showColumns, showColumns + ";"},
	}

	for _, step := range steps {
		p.printf("\n--- %s ---\n", step.header)
		out, err := uc.db.Exec(ctx, step.sql)
		if err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		p.println(trimRight(out))
	}

	if p.err != nil {
		return p.err
	}

	uc.logger.Infof("[%s] %s.%s is now %s", uc.db.GetName(), UpgradeTable, UpgradeColumn, UpgradeType)
	return nil
}
