package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kochabx/sealstore/store"
)

// blobDocument 对象文档，_id 为内容地址
type blobDocument struct {
	Address   string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	Size      int       `bson:"size"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Store 基于 MongoDB 集合的对象存储
type Store struct {
	client     *Client
	collection *mongo.Collection
}

var _ store.Adapter = (*Store)(nil)

// Open 连接 MongoDB 并返回对象存储
func Open(ctx context.Context, config *Config, opts ...Option) (*Store, error) {
	client, err := New(ctx, config, opts...)
	if err != nil {
		return nil, err
	}
	return NewStore(client), nil
}

// NewStore 在已有客户端上创建对象存储，库与集合取自客户端配置
func NewStore(client *Client) *Store {
	return &Store{
		client:     client,
		collection: client.Collection(),
	}
}

// Collection 返回对象集合
func (s *Store) Collection() *mongo.Collection {
	return s.collection
}

// Close 断开连接
func (s *Store) Close() error {
	return s.client.Close()
}

func byAddress(key string) bson.D {
	return bson.D{{Key: "_id", Value: key}}
}

// Put 写入对象，已存在时覆盖
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	doc := blobDocument{Address: key, Data: data, Size: len(data), UpdatedAt: time.Now().UTC()}
	_, err := s.collection.ReplaceOne(ctx, byAddress(key), doc, options.Replace().SetUpsert(true))
	return err
}

// Get 读取对象
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if store.ValidateKey(key) != nil {
		return nil, store.ErrNotFound
	}

	var doc blobDocument
	err := s.collection.FindOne(ctx, byAddress(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.Data == nil {
		return []byte{}, nil
	}
	return doc.Data, nil
}

// Exists 检查对象是否存在
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if store.ValidateKey(key) != nil {
		return false, nil
	}
	n, err := s.collection.CountDocuments(ctx, byAddress(key), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete 删除对象，不存在时不报错
func (s *Store) Delete(ctx context.Context, key string) error {
	if store.ValidateKey(key) != nil {
		return nil
	}
	_, err := s.collection.DeleteOne(ctx, byAddress(key))
	return err
}
