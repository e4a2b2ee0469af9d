package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"debinterface-agent/internal/domain/entities"
	"debinterface-agent/internal/domain/errors"
	"debinterface-agent/internal/domain/interfaces"
	"debinterface-agent/internal/infrastructure/metrics"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// MySQLRepository는 MySQL 기반의 DesiredRangeRepository 구현체입니다
type MySQLRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMySQLRepository는 새로운 MySQLRepository를 생성합니다
func NewMySQLRepository(db *sql.DB, logger *logrus.Logger) interfaces.DesiredRangeRepository {
	return &MySQLRepository{
		db:     db,
		logger: logger,
	}
}

// GetDesiredRanges는 특정 노드의 인터페이스별 원하는 범위 상태를 조회합니다
func (r *MySQLRepository) GetDesiredRanges(ctx context.Context, nodeName string) ([]entities.RangeDescriptor, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("get_desired_ranges", time.Since(start).Seconds())
	}()

	query := `
		SELECT dr.id, dr.node_name, dr.interface_name, dr.conn_type,
		       dr.range_ip_start, dr.range_ip_end, dr.sync_status
		FROM dhcp_range_desired dr
		WHERE dr.node_name = ?
		AND dr.deleted_at IS NULL
		ORDER BY dr.id
	`

	rows, err := r.db.QueryContext(ctx, query, nodeName)
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	defer rows.Close()

	var descriptors []entities.RangeDescriptor

	for rows.Next() {
		var d entities.RangeDescriptor
		var connType, rangeStart, rangeEnd sql.NullString
		var syncStatus int

		err := rows.Scan(
			&d.ID,
			&d.NodeName,
			&d.Name,
			&connType,
			&rangeStart,
			&rangeEnd,
			&syncStatus,
		)
		if err != nil {
			r.logger.WithError(err).Error("행 스캔 실패")
			continue
		}

		d.ConnType = connType.String
		d.RangeIPStart = rangeStart.String
		d.RangeIPEnd = rangeEnd.String
		d.Status = syncStatusFromColumn(syncStatus)
		descriptors = append(descriptors, d)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.NewSystemError("결과 처리 중 오류", err)
	}

	return descriptors, nil
}

// UpdateSyncStatus는 descriptor 의 반영 상태를 업데이트합니다
func (r *MySQLRepository) UpdateSyncStatus(ctx context.Context, id int, status entities.SyncStatus) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("update_sync_status", time.Since(start).Seconds())
	}()

	query := `
		UPDATE dhcp_range_desired
		SET sync_status = ?, modified_at = NOW()
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, syncStatusToColumn(status), id)
	if err != nil {
		return errors.NewSystemError("상태 업데이트 실패", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewSystemError("영향받은 행 확인 실패", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("범위 descriptor 를 찾을 수 없음: ID=%d", id))
	}

	r.logger.WithFields(logrus.Fields{
		"descriptor_id": id,
		"status":        status.String(),
	}).Debug("범위 반영 상태 업데이트 완료")

	return nil
}

// sync_status 컬럼: 0 = 대기, 1 = 반영, 2 = 실패
func syncStatusFromColumn(v int) entities.SyncStatus {
	switch v {
	case 1:
		return entities.SyncApplied
	case 2:
		return entities.SyncFailed
	default:
		return entities.SyncPending
	}
}

func syncStatusToColumn(s entities.SyncStatus) int {
	switch s {
	case entities.SyncApplied:
		return 1
	case entities.SyncFailed:
		return 2
	default:
		return 0
	}
}
