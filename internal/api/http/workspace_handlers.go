package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/netsession/internal/domain/analysis"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// NetworkInfo is the listing entry of a registered network
type NetworkInfo struct {
	SUID       types.SUID       `json:"suid"`
	Name       string           `json:"name"`
	RootSUID   types.SUID       `json:"root_suid,omitempty"`
	SavePolicy types.SavePolicy `json:"save_policy"`
	Selected   bool             `json:"selected"`
	Current    bool             `json:"current"`
	Nodes      int              `json:"nodes"`
	Edges      int              `json:"edges"`
	Views      []types.SUID     `json:"views"`
}

// TableInfo is the listing entry of a registered table
type TableInfo struct {
	SUID       types.SUID             `json:"suid"`
	Title      string                 `json:"title"`
	SavePolicy types.SavePolicy       `json:"save_policy"`
	Public     bool                   `json:"public"`
	Global     bool                   `json:"global"`
	Network    types.SUID             `json:"network,omitempty"`
	Type       types.IdentifiableType `json:"type,omitempty"`
	Namespace  string                 `json:"namespace,omitempty"`
	Columns    []types.Column         `json:"columns"`
	Rows       int                    `json:"rows"`
}

// ListNetworks lists registered networks with their views
func (h *Handlers) ListNetworks(c *gin.Context) {
	regs := h.manager.Registries()
	current := regs.Application.CurrentNetwork()

	networks := regs.Networks.Networks()
	out := make([]NetworkInfo, 0, len(networks))
	for _, n := range networks {
		info := NetworkInfo{
			SUID:       n.SUID,
			Name:       n.Name,
			SavePolicy: n.SavePolicy,
			Selected:   n.Selected,
			Current:    current != nil && current.SUID == n.SUID,
			Nodes:      len(n.Nodes),
			Edges:      len(n.Edges),
			Views:      []types.SUID{},
		}
		if n.Root != nil {
			info.RootSUID = n.Root.SUID
		}
		for _, v := range regs.Views.ViewsOf(n.SUID) {
			info.Views = append(info.Views, v.SUID)
		}
		out = append(out, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"networks": out,
		"count":    len(out),
	})
}

// GetNetworkSummary returns structural statistics of one network
func (h *Handlers) GetNetworkSummary(c *gin.Context) {
	suid, err := strconv.ParseInt(c.Param("suid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid network suid"})
		return
	}

	n, ok := h.manager.Registries().Networks.Network(types.SUID(suid))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "network not found"})
		return
	}
	c.JSON(http.StatusOK, analysis.Summarize(n))
}

// ListStyles lists visual styles and the view assignments
func (h *Handlers) ListStyles(c *gin.Context) {
	regs := h.manager.Registries()

	assignments := make(map[string]string)
	for _, v := range regs.Views.Views() {
		assignments[strconv.FormatInt(int64(v.SUID), 10)] = regs.Styles.ViewStyle(v.SUID).Title
	}

	c.JSON(http.StatusOK, gin.H{
		"styles":      regs.Styles.Styles(),
		"default":     regs.Styles.DefaultStyle().Title,
		"view_styles": assignments,
	})
}

// ListTables lists every registered table without row data
func (h *Handlers) ListTables(c *gin.Context) {
	regs := h.manager.Registries()

	global := make(map[types.SUID]bool)
	for _, t := range regs.Tables.GlobalTables() {
		global[t.SUID] = true
	}

	tables := regs.Tables.Tables()
	out := make([]TableInfo, 0, len(tables))
	for _, t := range tables {
		info := TableInfo{
			SUID:       t.SUID,
			Title:      t.Title,
			SavePolicy: t.SavePolicy,
			Public:     t.Public,
			Global:     global[t.SUID],
			Columns:    t.Columns,
			Rows:       len(t.Rows),
		}
		if netSUID, typ, ns, ok := regs.NetworkTables.Owner(t.SUID); ok {
			info.Network, info.Type, info.Namespace = netSUID, typ, ns
		}
		out = append(out, info)
	}

	c.JSON(http.StatusOK, gin.H{
		"tables": out,
		"count":  len(out),
	})
}

// MetricsJSON returns the metrics snapshot
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
