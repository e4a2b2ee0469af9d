package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"debinterface-agent/internal/domain/constants"
	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const backupTimeFormat = "20060102_150405.000"

// BackupService는 설정 파일의 타임스탬프 백업을 관리하는 서비스입니다
type BackupService struct {
	fileSystem interfaces.FileSystem
	clock      interfaces.Clock
	logger     *logrus.Logger
	backupDir  string
	keep       int
}

// NewBackupService는 새로운 BackupService를 생성합니다.
// keep 이 0보다 크면 이름별로 가장 최근 keep 개의 백업만 남깁니다.
func NewBackupService(
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	backupDir string,
	keep int,
) *BackupService {
	return &BackupService{
		fileSystem: fs,
		clock:      clock,
		logger:     logger,
		backupDir:  backupDir,
		keep:       keep,
	}
}

var _ interfaces.BackupService = (*BackupService)(nil)

// CreateBackup은 현재 설정의 백업을 생성합니다. 원본 파일이 없으면 아무것도 하지 않습니다.
func (s *BackupService) CreateBackup(ctx context.Context, name string, configPath string) error {
	if err := s.fileSystem.MkdirAll(s.backupDir, 0755); err != nil {
		return errors.NewSystemError("백업 디렉토리 생성 실패", err)
	}

	if !s.fileSystem.Exists(configPath) {
		s.logger.WithFields(logrus.Fields{
			"name": name,
			"path": configPath,
		}).Debug("백업할 설정 파일이 없음")
		return nil
	}

	content, err := s.fileSystem.ReadFile(configPath)
	if err != nil {
		return errors.NewSystemError("설정 파일 읽기 실패", err)
	}

	backupPath := s.backupPath(name, configPath)

	if err := s.fileSystem.WriteFile(backupPath, content, constants.ConfigFilePermission); err != nil {
		return errors.NewSystemError("백업 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"name":        name,
		"backup_path": backupPath,
	}).Info("설정 백업 생성 완료")

	s.prune(name)
	return nil
}

// backupPath는 백업 파일 경로를 만듭니다 (예: interfaces_20250108_150405.123).
// 같은 밀리초에 이미 백업이 있으면 -001, -002 ... 를 붙여 이름순이 생성순이 되게 합니다.
func (s *BackupService) backupPath(name, configPath string) string {
	base := fmt.Sprintf("%s_%s", name, s.clock.Now().Format(backupTimeFormat))
	ext := filepath.Ext(configPath)

	path := filepath.Join(s.backupDir, base+ext)
	for seq := 1; s.fileSystem.Exists(path); seq++ {
		path = filepath.Join(s.backupDir, fmt.Sprintf("%s-%03d%s", base, seq, ext))
	}
	return path
}

// RestoreLatestBackup은 가장 최근의 백업으로 configPath 를 되돌립니다
func (s *BackupService) RestoreLatestBackup(ctx context.Context, name string, configPath string) error {
	backupFiles, err := s.findBackupFiles(name)
	if err != nil {
		return err
	}
	if len(backupFiles) == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("%s 의 백업 파일을 찾을 수 없음", name))
	}

	latest := filepath.Join(s.backupDir, backupFiles[len(backupFiles)-1])
	content, err := s.fileSystem.ReadFile(latest)
	if err != nil {
		return errors.NewSystemError("백업 파일 읽기 실패", err)
	}
	if err := s.fileSystem.WriteFileAtomic(configPath, content, constants.ConfigFilePermission); err != nil {
		return errors.NewSystemError("백업 복원 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"name":        name,
		"backup_file": latest,
		"path":        configPath,
	}).Info("백업 복원 완료")
	return nil
}

// HasBackup은 백업이 존재하는지 확인합니다
func (s *BackupService) HasBackup(ctx context.Context, name string) bool {
	backupFiles, err := s.findBackupFiles(name)
	if err != nil {
		s.logger.WithError(err).Error("백업 파일 검색 실패")
		return false
	}
	return len(backupFiles) > 0
}

// prune은 보관 개수를 넘는 오래된 백업을 삭제합니다
func (s *BackupService) prune(name string) {
	if s.keep <= 0 {
		return
	}
	backupFiles, err := s.findBackupFiles(name)
	if err != nil || len(backupFiles) <= s.keep {
		return
	}
	for _, file := range backupFiles[:len(backupFiles)-s.keep] {
		if err := s.fileSystem.Remove(filepath.Join(s.backupDir, file)); err != nil {
			s.logger.WithError(err).WithField("file", file).Warn("오래된 백업 삭제 실패")
		}
	}
}

// findBackupFiles는 name 의 백업 파일들을 시간순으로 정렬하여 반환합니다
func (s *BackupService) findBackupFiles(name string) ([]string, error) {
	if !s.fileSystem.Exists(s.backupDir) {
		return []string{}, nil
	}

	files, err := s.fileSystem.ListFiles(s.backupDir)
	if err != nil {
		return nil, errors.NewSystemError("백업 디렉토리 읽기 실패", err)
	}

	var backupFiles []string
	prefix := name + "_"
	for _, file := range files {
		if strings.HasPrefix(file, prefix) {
			backupFiles = append(backupFiles, file)
		}
	}

	// 타임스탬프가 파일명에 포함되어 있으므로 이름순이 시간순
	sort.Strings(backupFiles)
	return backupFiles, nil
}
