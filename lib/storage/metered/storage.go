package metered

import (
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/VictoriaMetrics/metrics"
)

// operations recorded per storage, also the value of the op label
var operations = []string{"put", "get", "delete", "delete_all", "contains", "list_keys"}

var _ storage.IDeleteAllKeys = (*MeteredStorage)(nil)

type opMetrics struct {
	total    *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
}

// MeteredStorage is a storage.IStorage recording metrics for every operation
// of the storage it wraps.
type MeteredStorage struct {
	inner storage.IStorage
	set   *metrics.Set
	ops   map[string]*opMetrics
}

// NewMeteredStorage wraps inner and records its metrics in set.
// A nil set creates a new, private set.
func NewMeteredStorage(inner storage.IStorage, set *metrics.Set) *MeteredStorage {
	if set == nil {
		set = metrics.NewSet()
	}

	m := &MeteredStorage{
		inner: inner,
		set:   set,
		ops:   make(map[string]*opMetrics, len(operations)),
	}
	for _, op := range operations {
		m.ops[op] = &opMetrics{
			total:    set.GetOrCreateCounter(fmt.Sprintf(`pocket_storage_ops_total{op=%q}`, op)),
			errors:   set.GetOrCreateCounter(fmt.Sprintf(`pocket_storage_errors_total{op=%q}`, op)),
			duration: set.GetOrCreateHistogram(fmt.Sprintf(`pocket_storage_op_duration_seconds{op=%q}`, op)),
		}
	}
	return m
}

// WritePrometheus writes all recorded metrics in Prometheus text format to w.
func (m *MeteredStorage) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}

// Count returns how often op was called (op is one of put, get, delete, delete_all, contains, list_keys)
func (m *MeteredStorage) Count(op string) uint64 {
	if o, ok := m.ops[op]; ok {
		return o.total.Get()
	}
	return 0
}

// Errors returns how often op failed
func (m *MeteredStorage) Errors(op string) uint64 {
	if o, ok := m.ops[op]; ok {
		return o.errors.Get()
	}
	return 0
}

// observe records one call of op that started at start
func (m *MeteredStorage) observe(op string, start time.Time, err error) {
	o := m.ops[op]
	o.total.Inc()
	if err != nil {
		o.errors.Inc()
	}
	o.duration.Update(time.Since(start).Seconds())
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (m *MeteredStorage) Put(key string, value string) error {
	start := time.Now()
	err := m.inner.Put(key, value)
	m.observe("put", start, err)
	return err
}

func (m *MeteredStorage) Get(key string) (string, bool, error) {
	start := time.Now()
	value, loaded, err := m.inner.Get(key)
	m.observe("get", start, err)
	return value, loaded, err
}

func (m *MeteredStorage) Delete(key string) error {
	start := time.Now()
	err := m.inner.Delete(key)
	m.observe("delete", start, err)
	return err
}

func (m *MeteredStorage) DeleteAll() error {
	start := time.Now()
	err := m.inner.DeleteAll()
	m.observe("delete_all", start, err)
	return err
}

// DeleteAllKeys implements storage.IDeleteAllKeys, it is recorded as delete_all
func (m *MeteredStorage) DeleteAllKeys() ([]string, error) {
	start := time.Now()
	removed, err := storage.DeleteAllKeys(m.inner)
	m.observe("delete_all", start, err)
	return removed, err
}

func (m *MeteredStorage) Contains(key string) (bool, error) {
	start := time.Now()
	loaded, err := m.inner.Contains(key)
	m.observe("contains", start, err)
	return loaded, err
}

func (m *MeteredStorage) ListKeys() ([]string, error) {
	start := time.Now()
	keys, err := m.inner.ListKeys()
	m.observe("list_keys", start, err)
	return keys, err
}
