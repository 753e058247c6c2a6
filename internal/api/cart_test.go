package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartIssuesSessionCookie(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var issued bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie && ck.Value != "" {
			issued = true
		}
	}
	assert.True(t, issued, "expected a session cookie on first contact")

	snap := decodeBody(t, rec)
	assert.Equal(t, float64(0), snap["count"])
	assert.Equal(t, "R$ 0,00", snap["subtotal_brl"])
	assert.Equal(t, "VÉRACO", snap["store_name"])
}

func TestCartAdd(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		gin.H{"product_id": 1, "qty": 2}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "Adicionado ao carrinho!", body["message"])

	cartBody := body["cart"].(map[string]any)
	assert.Equal(t, float64(2), cartBody["count"])
	items := cartBody["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "R$ 200,00", items[0].(map[string]any)["line_total_brl"])

	assert.Equal(t, 2, env.sessions.carts["sess"]["1:"])
}

func TestCartAddDefaultsQtyToOne(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		gin.H{"product_id": 1}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, env.sessions.carts["sess"]["1:"])
}

func TestCartAddNeedsSize(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		gin.H{"product_id": 2}, sidCookie("sess"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, true, body["need_size"])
	assert.Equal(t, []any{"P", "M", "G"}, body["sizes"])
}

func TestCartAddWithSize(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		gin.H{"product_id": 2, "size": "m"}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, env.sessions.carts["sess"]["2:M"])
}

func TestCartAddUnknownProduct(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		gin.H{"product_id": 99}, sidCookie("sess"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Produto não encontrado.", decodeBody(t, rec)["error"])
}

func TestCartAddOutOfStock(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		gin.H{"product_id": 3}, sidCookie("sess"))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Sem estoque.", decodeBody(t, rec)["error"])
}

func TestCartAddClampsToStock(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/add",
		gin.H{"product_id": 2, "size": "M", "qty": 50}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 3, env.sessions.carts["sess"]["2:M"])
}

func TestCartUpdate(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sessions.carts["sess"] = map[string]int{"1:": 2}

	rec := env.do(t, http.MethodPost, "/api/cart/update",
		gin.H{"key": "1:", "qty": 5}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, decodeBody(t, rec)["ok"])
	assert.Equal(t, 5, env.sessions.carts["sess"]["1:"])
}

func TestCartUpdateClampsToStock(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sessions.carts["sess"] = map[string]int{"1:": 2}

	rec := env.do(t, http.MethodPost, "/api/cart/update",
		gin.H{"key": "1:", "qty": 50}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 5, env.sessions.carts["sess"]["1:"])
}

func TestCartUpdateToZeroRemoves(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sessions.carts["sess"] = map[string]int{"1:": 2}

	rec := env.do(t, http.MethodPost, "/api/cart/update",
		gin.H{"key": "1:", "qty": 0}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := env.sessions.carts["sess"]["1:"]
	assert.False(t, ok)
}

func TestCartUpdateMissingItem(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/update",
		gin.H{"key": "9:", "qty": 1}, sidCookie("sess"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item não encontrado.", decodeBody(t, rec)["error"])
}

func TestCartRemove(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sessions.carts["sess"] = map[string]int{"1:": 2}

	rec := env.do(t, http.MethodPost, "/api/cart/remove",
		gin.H{"key": "1:"}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.sessions.carts["sess"])

	// Removing an absent key is still ok.
	rec = env.do(t, http.MethodPost, "/api/cart/remove",
		gin.H{"key": "1:"}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCartClear(t *testing.T) {
	env := newTestEnv(t, nil)
	env.sessions.carts["sess"] = map[string]int{"1:": 2, "2:M": 1}

	rec := env.do(t, http.MethodPost, "/api/cart/clear", gin.H{}, sidCookie("sess"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	cartBody := body["cart"].(map[string]any)
	assert.Equal(t, float64(0), cartBody["count"])
	assert.Empty(t, env.sessions.carts["sess"])
}
