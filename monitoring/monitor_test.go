package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/opencache/geom"
)

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
		g geom.Geometry
	)

	BeforeEach(func() {
		var err error
		g, err = geom.DefaultConfig().Derive()
		Expect(err).ToNot(HaveOccurred())

		m = NewMonitor()
		m.RegisterCache("Cache", g)
	})

	It("should list registered caches", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/caches", nil)

		m.listCaches(w, r)

		var names []string
		Expect(json.Unmarshal(w.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(ConsistOf("Cache"))
	})

	It("should serve a cache's geometry", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/geometry/Cache", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Cache"})

		m.showGeometry(w, r)

		var rsp geom.Geometry
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.NumRows).To(Equal(g.NumRows))
		Expect(rsp.TagSize).To(Equal(g.TagSize))
	})

	It("should 404 on unknown caches", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/geometry/Nope", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Nope"})

		m.showGeometry(w, r)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("replay", 100)
		bar.Increment(40)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
		m.listProgress(w, r)

		var bars []*ProgressBar
		Expect(json.Unmarshal(w.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Finished).To(Equal(uint64(40)))

		m.CompleteProgressBar(bar)

		w = httptest.NewRecorder()
		m.listProgress(w, r)
		Expect(json.Unmarshal(w.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(BeEmpty())
	})
})
