package handler

import (
	"net/http"
	"strconv"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/experiment"
)

// PreviewCatalog 根据查询参数生成物品目录，同样的参数总是得到同样的目录
func (h *Handler) PreviewCatalog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count         int `validate:"min=1,max=4096"`
		MaxItemWeight int `validate:"min=1"`
		ValueBias     int `validate:"min=0"`
		Seed          int64
	}
	req.Count = h.config.GA.ItemCount
	req.MaxItemWeight = h.config.GA.MaxItemWeight
	req.ValueBias = h.config.GA.ValueBias
	req.Seed = h.config.GA.Seed

	query := r.URL.Query()
	for name, dst := range map[string]*int{
		"count":         &req.Count,
		"maxItemWeight": &req.MaxItemWeight,
		"valueBias":     &req.ValueBias,
	} {
		if v := query.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				h.errorResponse(w, r, "参数 "+name+" 必须是整数")
				return
			}
			*dst = n
		}
	}
	if v := query.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "参数 seed 必须是整数")
			return
		}
		req.Seed = seed
	}

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	catalog, err := experiment.NewCatalog(domain.ExperimentSettings{
		ItemCount:     req.Count,
		MaxItemWeight: req.MaxItemWeight,
		ValueBias:     req.ValueBias,
		Seed:          req.Seed,
	})
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.successResponse(w, r, "生成物品目录成功", map[string]any{
		"seed":        req.Seed,
		"items":       catalog.Items(),
		"totalValue":  catalog.TotalValue(),
		"totalWeight": catalog.TotalWeight(),
	})
}
