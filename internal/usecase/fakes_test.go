package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/semmidev/dbops/internal/infrastructure/command"
)

type fakeDatabase struct {
	queries map[string]string
	execs   map[string]*command.Result
	dumpErr error
	dumped  []string
	calls   []string
}

// Query answers with the first canned output whose key appears in sql.
func (f *fakeDatabase) Query(ctx context.Context, sql string) (string, error) {
	f.calls = append(f.calls, sql)
	for key, out := range f.queries {
		if strings.Contains(sql, key) {
			return out, nil
		}
	}
	return "", errors.New("unexpected query: " + sql)
}

func (f *fakeDatabase) Exec(ctx context.Context, sql string) (string, error) {
	f.calls = append(f.calls, sql)
	result, ok := f.execs[sql]
	if !ok {
		return "", errors.New("unexpected statement: " + sql)
	}
	if err := result.Err(); err != nil {
		return "", err
	}
	return result.Output, nil
}

func (f *fakeDatabase) DumpTable(ctx context.Context, table, outputPath string) error {
	f.dumped = append(f.dumped, table+" > "+outputPath)
	if f.dumpErr != nil {
		return f.dumpErr
	}
	return os.WriteFile(outputPath, []byte("-- dump of "+table+"\n"), 0600)
}

func (f *fakeDatabase) GetName() string {
	return "miaoji"
}

type fakeStorage struct {
	err      error
	uploaded []string
	contents []string
}

func (f *fakeStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.uploaded = append(f.uploaded, remoteName)
	f.contents = append(f.contents, string(data))
	return nil
}

type fakeCompressor struct {
	err error
}

func (f *fakeCompressor) Compress(sourcePath, destPath string) error {
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, append([]byte("z:"), data...), 0600)
}

func (f *fakeCompressor) Extension() string {
	return ".z"
}

type recordingLogger struct {
	infos  []string
	warns  []string
	errors []string
}

func (l *recordingLogger) Infof(template string, args ...interface{}) {
	l.infos = append(l.infos, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Warnf(template string, args ...interface{}) {
	l.warns = append(l.warns, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Errorf(template string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(template, args...))
}
