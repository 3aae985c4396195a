package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kochabx/sealstore/store"
)

// DefaultTable 默认对象表名
const DefaultTable = "sealstore_blobs"

// Blob 对象表行
type Blob struct {
	Address   string `gorm:"column:address;primaryKey;size:64"`
	Data      []byte `gorm:"column:data;not null"`
	Size      int    `gorm:"column:size;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store 基于 GORM 的对象存储
type Store struct {
	client *Client
	table  string
}

var _ store.Adapter = (*Store)(nil)

// Open 创建数据库客户端并返回对象存储
func Open(ctx context.Context, cfg DriverConfig, opts ...Option) (*Store, error) {
	client, err := New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}

	s, err := NewStore(ctx, client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// NewStore 在已有客户端上创建对象存储
func NewStore(ctx context.Context, client *Client) (*Store, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}

	s := &Store{client: client, table: client.options.table}
	if client.options.autoMigrate {
		if err := s.tx(ctx).AutoMigrate(&Blob{}); err != nil {
			return nil, err
		}
	}

	client.logger.Debug().Str("table", s.table).Msg("database store ready")
	return s, nil
}

// Client 返回底层数据库客户端
func (s *Store) Client() *Client {
	return s.client
}

// Table 返回对象表名
func (s *Store) Table() string {
	return s.table
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) tx(ctx context.Context) *gorm.DB {
	return s.client.DB().WithContext(ctx).Table(s.table)
}

// Put 写入对象，已存在时覆盖
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}

	row := &Blob{Address: key, Data: data, Size: len(data)}
	return s.tx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "size", "updated_at"}),
	}).Create(row).Error
}

// Get 读取对象
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if store.ValidateKey(key) != nil {
		return nil, store.ErrNotFound
	}

	var row Blob
	err := s.tx(ctx).Where("address = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if row.Data == nil {
		return []byte{}, nil
	}
	return row.Data, nil
}

// Exists 检查对象是否存在
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if store.ValidateKey(key) != nil {
		return false, nil
	}

	var n int64
	if err := s.tx(ctx).Where("address = ?", key).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete 删除对象，不存在时不报错
func (s *Store) Delete(ctx context.Context, key string) error {
	if store.ValidateKey(key) != nil {
		return nil
	}
	return s.tx(ctx).Where("address = ?", key).Delete(&Blob{}).Error
}
