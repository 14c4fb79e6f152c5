package metrics

import (
	"sync"
)

// Sample é um valor registrado por um MemoryProvider.
type Sample struct {
	Type  MetricType
	Name  string
	Value float64
	Tags  []string
}

// MemoryProvider guarda as métricas em memória. Útil em testes e para
// inspecionar o que seria enviado ao agente.
type MemoryProvider struct {
	mu      sync.Mutex
	samples []Sample
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

func (m *MemoryProvider) Count(name string, value float64, tags []string) error {
	m.record(TypeCount, name, value, tags)
	return nil
}

func (m *MemoryProvider) Gauge(name string, value float64, tags []string) error {
	m.record(TypeGauge, name, value, tags)
	return nil
}

func (m *MemoryProvider) Histogram(name string, value float64, tags []string) error {
	m.record(TypeHistogram, name, value, tags)
	return nil
}

func (m *MemoryProvider) record(typ MetricType, name string, value float64, tags []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]string, len(tags))
	copy(cp, tags)
	m.samples = append(m.samples, Sample{Type: typ, Name: name, Value: value, Tags: cp})
}

// Samples devolve uma cópia das métricas registradas com o nome informado.
func (m *MemoryProvider) Samples(name string) []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Sample
	for _, s := range m.samples {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Last devolve a última métrica com o nome informado.
func (m *MemoryProvider) Last(name string) (Sample, bool) {
	samples := m.Samples(name)
	if len(samples) == 0 {
		return Sample{}, false
	}
	return samples[len(samples)-1], true
}
