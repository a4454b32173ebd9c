package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/k2302/golang-order-matching/models"
	"github.com/k2302/golang-order-matching/pricefmt"
)

type placeOrderRequest struct {
	UserID      uint64 `json:"userId" binding:"required"`
	Symbol      string `json:"symbol" binding:"required"`
	Side        string `json:"side" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Price       string `json:"price"`
	Quantity    uint64 `json:"quantity" binding:"required"`
	TimeInForce string `json:"timeInForce"`
}

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	side, ok := parseSide(req.Side)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid side"})
		return
	}
	typ, ok := parseType(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
		return
	}
	tif, ok := parseTIF(req.TimeInForce)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timeInForce"})
		return
	}

	var price int64
	if typ == models.Limit {
		p, err := s.codec.ParseFixed(req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
		price = p
	}

	order, code := s.eng.Submit(req.UserID, req.Symbol, side, typ, tif, price, req.Quantity)
	if code != models.Success {
		c.JSON(statusFor(code), gin.H{"error": string(code)})
		return
	}
	c.JSON(http.StatusOK, orderView(order, s.codec))
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	code := s.eng.Cancel(id)
	if code != models.Success {
		c.JSON(statusFor(code), gin.H{"error": string(code)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	o := s.eng.Registry().Get(id)
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": string(models.ErrOrderNotFound)})
		return
	}
	c.JSON(http.StatusOK, orderView(o, s.codec))
}

func (s *Server) handleGetUserOrders(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	orders := s.eng.Registry().UserOrders(id)
	out := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView(o, s.codec))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (s *Server) handleGetUserBalance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	b := s.eng.Ledger().Balance(id)
	c.JSON(http.StatusOK, gin.H{
		"userId":    b.UserID,
		"available": s.codec.FormatFixed(b.Available),
		"locked":    s.codec.FormatFixed(b.Locked),
	})
}

func (s *Server) handleGetOrderBook(c *gin.Context) {
	symbol := c.Param("symbol")
	snap := s.eng.MarketSnapshot(symbol)
	c.JSON(http.StatusOK, gin.H{
		"symbol":            snap.Symbol,
		"bidPrice":          s.codec.FormatFixed(snap.BidPrice),
		"bidQuantity":       snap.BidQuantity,
		"askPrice":          s.codec.FormatFixed(snap.AskPrice),
		"askQuantity":       snap.AskQuantity,
		"lastTradePrice":    s.codec.FormatFixed(snap.LastTradePrice),
		"lastTradeQuantity": snap.LastTradeQuantity,
		"totalVolume":       snap.TotalVolume,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	s.hub.ServeSymbol(c.Writer, c.Request, c.Param("symbol"))
}

func orderView(o *models.Order, codec pricefmt.Codec) gin.H {
	return gin.H{
		"orderId":        o.ID,
		"userId":         o.UserID,
		"symbol":         o.Symbol,
		"side":           o.Side,
		"orderType":      o.Type,
		"timeInForce":    o.TimeInForce,
		"price":          codec.FormatFixed(o.Price),
		"quantity":       o.Quantity,
		"filledQuantity": o.Filled,
		"status":         o.Status,
	}
}

func statusFor(code models.ErrorCode) int {
	switch code {
	case models.ErrOrderNotFound:
		return http.StatusNotFound
	case models.ErrSystemError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func parseSide(s string) (models.Side, bool) {
	switch s {
	case "BUY":
		return models.Buy, true
	case "SELL":
		return models.Sell, true
	default:
		return "", false
	}
}

func parseType(s string) (models.OrderType, bool) {
	switch s {
	case "LIMIT":
		return models.Limit, true
	case "MARKET":
		return models.Market, true
	default:
		return "", false
	}
}

func parseTIF(s string) (models.TimeInForce, bool) {
	switch s {
	case "":
		return models.GFD, true
	case "GFD":
		return models.GFD, true
	case "IOC":
		return models.IOC, true
	case "FOK":
		return models.FOK, true
	default:
		return "", false
	}
}
