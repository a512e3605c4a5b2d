// Package qdrant provides a VectorIndex backed by a Qdrant collection.
//
// All graphs share one collection. Each point carries its graph ID in the
// graph_id payload field and every read, delete and query is filtered on
// it, so namespaces never see each other's points.
package qdrant

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	"github.com/atlus-labs/atlus/internal/core/domain"
	"github.com/atlus-labs/atlus/internal/core/ports/driven"
	"github.com/atlus-labs/atlus/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultCollection = "atlus_nodes"
	DefaultPort       = 6334

	namespaceField = "graph_id"
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the gRPC address, "host:port" or "http(s)://host:port".
	URL string

	// APIKey is sent with every request when set.
	APIKey string

	// Collection is the collection name (default: atlus_nodes).
	Collection string

	// Dimensions is the vector size used when the collection is created.
	// Zero means the size of the first upserted vector.
	Dimensions int
}

// pointsClient is the subset of *qdrant.Client used by the index.
type pointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Close() error
}

// Index is a VectorIndex over one Qdrant collection.
type Index struct {
	client     pointsClient
	collection string
	dimensions int

	mu    sync.Mutex
	ready bool
}

// New connects to Qdrant. The collection is created lazily on first upsert.
func New(cfg Config) (*Index, error) {
	host, port, useTLS, err := parseAddress(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorStore, err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %w", domain.ErrVectorStore, cfg.URL, err)
	}

	return newWithClient(client, cfg), nil
}

func newWithClient(client pointsClient, cfg Config) *Index {
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	return &Index{
		client:     client,
		collection: collection,
		dimensions: cfg.Dimensions,
	}
}

// Upsert writes records into the namespace. Metadata is sanitised to
// scalars and the namespace field is always overwritten.
func (i *Index) Upsert(ctx context.Context, ns string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := i.ensureCollection(ctx, len(records[0].Vector)); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		payload := domain.SanitizeMetadata(r.Metadata)
		payload[namespaceField] = ns

		values, err := qdrant.TryValueMap(payload)
		if err != nil {
			return fmt.Errorf("%w: payload for %s: %w", domain.ErrVectorStore, r.ID, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(r.ID),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: values,
		})
	}

	wait := true
	if _, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("%w: upsert %d points: %w", domain.ErrVectorStore, len(points), err)
	}

	logger.Debug("qdrant upsert", "namespace", ns, "points", len(points))
	return nil
}

// Query asks Qdrant for CandidateCount nearest points inside the
// namespace and applies domain.FilterMatches to them.
func (i *Index) Query(ctx context.Context, ns string, vector []float32, opts domain.QueryOptions) ([]domain.VectorMatch, error) {
	exists, err := i.collectionReady(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []domain.VectorMatch{}, nil
	}

	limit := uint64(opts.CandidateCount())
	points, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         namespaceFilter(ns),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrVectorStore, err)
	}

	candidates := make([]domain.VectorMatch, 0, len(points))
	for _, p := range points {
		candidates = append(candidates, domain.VectorMatch{
			ID:       pointID(p.GetId()),
			Score:    float64(p.GetScore()),
			Metadata: payloadToMap(p.GetPayload()),
		})
	}

	return domain.FilterMatches(candidates, opts), nil
}

// Delete removes points by ID, restricted to the namespace.
func (i *Index) Delete(ctx context.Context, ns string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	exists, err := i.collectionReady(ctx)
	if err != nil || !exists {
		return err
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for k, id := range ids {
		pointIDs[k] = qdrant.NewID(id)
	}

	filter := namespaceFilter(ns)
	filter.Must = append(filter.Must, qdrant.NewHasID(pointIDs...))
	return i.deleteByFilter(ctx, filter)
}

// DeleteNamespace removes every point of the namespace.
func (i *Index) DeleteNamespace(ctx context.Context, ns string) error {
	exists, err := i.collectionReady(ctx)
	if err != nil || !exists {
		return err
	}
	return i.deleteByFilter(ctx, namespaceFilter(ns))
}

// Close closes the gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}

func (i *Index) deleteByFilter(ctx context.Context, filter *qdrant.Filter) error {
	wait := true
	if _, err := i.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: i.collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelectorFilter(filter),
	}); err != nil {
		return fmt.Errorf("%w: delete: %w", domain.ErrVectorStore, err)
	}
	return nil
}

func (i *Index) collectionReady(ctx context.Context) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.ready {
		return true, nil
	}
	exists, err := i.client.CollectionExists(ctx, i.collection)
	if err != nil {
		return false, fmt.Errorf("%w: check collection: %w", domain.ErrVectorStore, err)
	}
	i.ready = exists
	return exists, nil
}

func (i *Index) ensureCollection(ctx context.Context, vectorSize int) error {
	exists, err := i.collectionReady(ctx)
	if err != nil || exists {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ready {
		return nil
	}

	size := i.dimensions
	if size <= 0 {
		size = vectorSize
	}
	if size <= 0 {
		return fmt.Errorf("%w: unknown vector size", domain.ErrVectorStore)
	}

	if err := i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: i.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(size),
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return fmt.Errorf("%w: create collection %s: %w", domain.ErrVectorStore, i.collection, err)
	}

	if _, err := i.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: i.collection,
		FieldName:      namespaceField,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	}); err != nil {
		return fmt.Errorf("%w: index %s: %w", domain.ErrVectorStore, namespaceField, err)
	}

	logger.Info("created qdrant collection", "collection", i.collection, "size", size)
	i.ready = true
	return nil
}

func namespaceFilter(ns string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(namespaceField, ns)},
	}
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		}
	}
	return out
}

// parseAddress accepts "host", "host:port" or a URL with scheme.
func parseAddress(raw string) (host string, port int, useTLS bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0, false, fmt.Errorf("qdrant URL is required")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", 0, false, fmt.Errorf("parse qdrant URL: %w", err)
		}
		useTLS = u.Scheme == "https"
		raw = u.Host
	}

	host, portStr, splitErr := net.SplitHostPort(raw)
	if splitErr != nil {
		return raw, DefaultPort, useTLS, nil
	}
	port, err = strconv.Atoi(portStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid qdrant port %q", portStr)
	}
	return host, port, useTLS, nil
}
