package handler

import (
	"net/http"
	"testing"
)

func TestListProductsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	if err := env.catalog.SeedIfEmpty(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := env.request(t, http.MethodGet, "/api/products", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var products []struct {
		ItemCode string `json:"item_code"`
	}
	decodeJSON(t, rec, &products)
	wantCodes := []string{"0000", "0001", "0002", "0003", "0004"}
	if len(products) != len(wantCodes) {
		t.Fatalf("expected %d products, got %d", len(wantCodes), len(products))
	}
	for i, code := range wantCodes {
		if products[i].ItemCode != code {
			t.Fatalf("position %d: expected %q, got %q", i, code, products[i].ItemCode)
		}
	}
}

func TestCreateProductEndpoint(t *testing.T) {
	t.Run("creates and returns the product", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.request(t, http.MethodPost, "/api/products",
			`{"item_code":"0101","item_name":"Laser Print (A3)","default_rate":20.00}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var product struct {
			ItemCode    string  `json:"item_code"`
			ItemName    string  `json:"item_name"`
			DefaultRate float64 `json:"default_rate"`
		}
		decodeJSON(t, rec, &product)
		if product.ItemCode != "0101" || product.DefaultRate != 20.00 {
			t.Fatalf("unexpected product: %+v", product)
		}
	})

	t.Run("duplicate code", func(t *testing.T) {
		env := newTestEnv(t)
		_ = env.catalog.SeedIfEmpty()

		rec := env.request(t, http.MethodPost, "/api/products",
			`{"item_code":"0001","item_name":"Another Ream","default_rate":1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed input", func(t *testing.T) {
		env := newTestEnv(t)
		cases := []struct {
			name string
			body string
		}{
			{"missing code", `{"item_name":"X","default_rate":1}`},
			{"missing name", `{"item_code":"0101","default_rate":1}`},
			{"non-numeric rate", `{"item_code":"0101","item_name":"X","default_rate":"cheap"}`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rec := env.request(t, http.MethodPost, "/api/products", tc.body)
				if rec.Code != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
				}
			})
		}
	})
}

func TestUpdateProductEndpoint(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		env := newTestEnv(t)
		_ = env.catalog.SeedIfEmpty()

		rec := env.request(t, http.MethodPut, "/api/products/0001",
			`{"default_rate":375.00}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var product struct {
			ItemName    string  `json:"item_name"`
			DefaultRate float64 `json:"default_rate"`
		}
		decodeJSON(t, rec, &product)
		if product.ItemName != "A4 Plain Paper Ream" {
			t.Fatalf("name changed unexpectedly: %q", product.ItemName)
		}
		if product.DefaultRate != 375.00 {
			t.Fatalf("expected rate 375.00, got %f", product.DefaultRate)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.request(t, http.MethodPut, "/api/products/4242",
			`{"default_rate":1}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestDeleteProductEndpoint(t *testing.T) {
	t.Run("reserved entry", func(t *testing.T) {
		env := newTestEnv(t)
		_ = env.catalog.SeedIfEmpty()

		rec := env.request(t, http.MethodDelete, "/api/products/0000", "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("removes the record", func(t *testing.T) {
		env := newTestEnv(t)
		_ = env.catalog.SeedIfEmpty()

		rec := env.request(t, http.MethodDelete, "/api/products/0003", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = env.request(t, http.MethodGet, "/api/products/0003", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", rec.Code)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.request(t, http.MethodDelete, "/api/products/4242", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
