package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/semmidev/dbops/internal/infrastructure/command"

	. "github.com/smartystreets/goconvey/convey"
)

const (
	showColumnsSQL = "SHOW FULL COLUMNS FROM Banner;"
	alterSQL       = "ALTER TABLE Banner MODIFY COLUMN targetId varchar(191) NULL;"
)

func TestBackupPath(t *testing.T) {
	Convey("Given a run start time", t, func() {
		now := time.Date(2026, 10, 18, 5, 25, 1, 999, time.Local)

		Convey("It should name a timestamped dump under /root", func() {
			So(BackupPath(DefaultBackupDir, now), ShouldEqual, "/root/backup_banner_2026-10-18_052501.sql")
		})

		Convey("It should always match the documented pattern", func() {
			pattern := regexp.MustCompile(`^/root/backup_banner_\d{4}-\d{2}-\d{2}_\d{6}\.sql$`)
			So(pattern.MatchString(BackupPath(DefaultBackupDir, time.Now())), ShouldBeTrue)
		})

		Convey("It should use local time", func() {
			utc := now.UTC()
			So(BackupPath(DefaultBackupDir, utc), ShouldEqual, BackupPath(DefaultBackupDir, now))
		})
	})
}

func TestUpgrade(t *testing.T) {
	Convey("Given an Upgrade use case", t, func() {
		tempDir, err := os.MkdirTemp("", "upgrade_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		ctx := context.Background()
		logger := &recordingLogger{}
		var out bytes.Buffer

		db := &fakeDatabase{execs: map[string]*command.Result{
			showColumnsSQL: {Output: "Field\tType\ntargetId\tint\n"},
			alterSQL:       {Output: ""},
		}}

		newUpgrade := func(offsite *Offsite) *Upgrade {
			uc := NewUpgrade(db, &out, logger, offsite)
			uc.backupDir = tempDir
			uc.now = func() time.Time { return time.Date(2026, 10, 18, 5, 25, 1, 0, time.Local) }
			return uc
		}
		backup := filepath.Join(tempDir, "backup_banner_2026-10-18_052501.sql")

		Convey("When every step succeeds", func() {
			err := newUpgrade(nil).Execute(ctx)

			Convey("It should back up Banner first", func() {
				So(err, ShouldBeNil)
				So(db.dumped, ShouldResemble, []string{"Banner > " + backup})
				_, statErr := os.Stat(backup)
				So(statErr, ShouldBeNil)
			})

			Convey("It should run before, alter and after in order", func() {
				So(db.calls, ShouldResemble, []string{showColumnsSQL, alterSQL, showColumnsSQL})
			})

			Convey("It should print the backup path and both snapshots", func() {
				So(out.String(), ShouldEqual, strings.Join([]string{
					"BACKUP_FILE=" + backup,
					"",
					"--- BEFORE: SHOW FULL COLUMNS FROM Banner ---",
					"Field\tType",
					"targetId\tint",
					"",
					"--- ALTER: targetId -> varchar(191) NULL ---",
					"",
					"",
					"--- AFTER: SHOW FULL COLUMNS FROM Banner ---",
					"Field\tType",
					"targetId\tint",
					"",
				}, "\n"))
			})
		})

		Convey("When the backup fails", func() {
			db.dumpErr = errors.New("mysqldump failed:\nAccess denied")
			err := newUpgrade(nil).Execute(ctx)

			Convey("It should stop before touching the table", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "Access denied")
				So(db.calls, ShouldBeEmpty)
				So(out.String(), ShouldNotContainSubstring, "BACKUP_FILE=")
			})
		})

		Convey("When the ALTER exits non-zero", func() {
			db.execs[alterSQL] = &command.Result{
				Command:  command.Command{Name: "mysql", Args: []string{"-e", alterSQL}},
				Output:   "ERROR 1265 (01000): Data truncated for column 'targetId'\n",
				ExitCode: 1,
			}
			err := newUpgrade(nil).Execute(ctx)

			Convey("It should fail with the captured output", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "command failed: mysql -e "+alterSQL)
				So(err.Error(), ShouldContainSubstring, "Data truncated for column 'targetId'")

				var exitErr *command.ExitError
				So(errors.As(err, &exitErr), ShouldBeTrue)
			})

			Convey("It should not print the AFTER snapshot", func() {
				So(out.String(), ShouldContainSubstring, "--- BEFORE:")
				So(out.String(), ShouldNotContainSubstring, "--- AFTER:")
				So(db.calls, ShouldResemble, []string{showColumnsSQL, alterSQL})
			})

			Convey("It should leave the backup in place", func() {
				_, statErr := os.Stat(backup)
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When the BEFORE inspection fails", func() {
			db.execs[showColumnsSQL] = &command.Result{Output: "ERROR 1146 (42S02)", ExitCode: 1}
			err := newUpgrade(nil).Execute(ctx)

			Convey("It should never run the ALTER", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldStartWith, "before: ")
				So(db.calls, ShouldResemble, []string{showColumnsSQL})
			})
		})

		Convey("When offsite targets are configured", func() {
			mirror := &fakeStorage{}
			offsite := NewOffsite([]UploadTarget{{Name: "local", Storage: mirror}}, &fakeCompressor{}, logger, true)
			offsite.tempDir = tempDir
			err := newUpgrade(offsite).Execute(ctx)

			Convey("It should ship the backup and still run the upgrade", func() {
				So(err, ShouldBeNil)
				So(mirror.uploaded, ShouldResemble, []string{"backup_banner_2026-10-18_052501.sql.z"})
				So(out.String(), ShouldContainSubstring, "--- AFTER:")
			})
		})

		Convey("When an offsite upload fails", func() {
			broken := &fakeStorage{err: errors.New("bucket not found")}
			offsite := NewOffsite([]UploadTarget{{Name: "s3", Storage: broken}}, &fakeCompressor{}, logger, false)
			err := newUpgrade(offsite).Execute(ctx)

			Convey("It should log it and carry on", func() {
				So(err, ShouldBeNil)
				So(len(logger.errors), ShouldEqual, 1)
				So(logger.errors[0], ShouldContainSubstring, "bucket not found")
				So(db.calls, ShouldResemble, []string{showColumnsSQL, alterSQL, showColumnsSQL})
			})
		})
	})
}
