// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/danielhkuo/quickly-order/models"
)

// Seeded fixtures
const (
	KitchenUsername = "chef"
	KitchenPassword = "chef123"
	ManagerUsername = "manager"
	ManagerPassword = "manager123"
	RestaurantSlug  = "test-bistro"
	TableQRCode     = "qr-table-1"
)

// FakeAPI is an in-memory stand-in for the ordering REST API. Tokens are
// real HS256 JWTs so clients can decode their claims.
type FakeAPI struct {
	Server *httptest.Server
	URL    string

	mu          sync.Mutex
	secret      []byte
	generation  int
	accessTTL   time.Duration
	failRefresh bool
	denyAll     bool
	calls       map[string]int
	users       map[string]fakeUser
	restaurant  models.Restaurant
	tables      []models.Table
	orders      []*models.Order
	nextID      int64
	loggedOut   []string
}

type fakeUser struct {
	password string
	user     models.User
}

// NewFakeAPI starts a seeded fake API; URL is the /api root.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		secret:    []byte("test-signing-key"),
		accessTTL: 5 * time.Minute,
		calls:     make(map[string]int),
		nextID:    100,
	}
	f.seed()

	f.Server = httptest.NewServer(f.router())
	f.URL = f.Server.URL + "/api"
	t.Cleanup(f.Server.Close)

	return f
}

func (f *FakeAPI) seed() {
	ref := &models.RestaurantRef{ID: 1, Name: "Test Bistro", Slug: RestaurantSlug}
	f.users = map[string]fakeUser{
		KitchenUsername: {KitchenPassword, models.User{ID: 1, Username: KitchenUsername, Role: models.RoleKitchenStaff, Restaurant: ref}},
		ManagerUsername: {ManagerPassword, models.User{ID: 2, Username: ManagerUsername, Role: models.RoleRestaurantManager, Restaurant: ref}},
	}

	category := int64(10)
	momo := TestMenuItem(1, "Chicken Momo", "10.00", 10)
	momo.Category = &category
	momo.IsSpecialOfDay = true
	chowmein := TestMenuItem(2, "Veg Chowmein", "5.50", 20)
	chowmein.Category = &category
	thukpa := TestMenuItem(3, "Thukpa", "7.25", 15)
	thukpa.Category = &category
	thukpa.IsAvailable = false

	f.restaurant = models.Restaurant{
		ID:   1,
		Name: "Test Bistro",
		Slug: RestaurantSlug,
		MenuGroups: []models.MenuGroup{{
			ID:   1,
			Type: "FOOD",
			Categories: []models.MenuCategory{{
				ID:    category,
				Name:  "Mains",
				Items: []models.MenuItem{momo, chowmein, thukpa},
			}},
		}},
	}

	f.tables = []models.Table{{ID: 1, Restaurant: 1, TableNumber: "T1", Capacity: 4, IsActive: true, QRCode: TableQRCode}}
}

// Test controls

// ExpireAccessTokens invalidates every access token issued so far.
func (f *FakeAPI) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
}

// FailRefresh makes /auth/refresh/ answer 401.
func (f *FakeAPI) FailRefresh(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRefresh = fail
}

// DenyAll makes every authenticated endpoint answer 401, even right after a refresh.
func (f *FakeAPI) DenyAll(deny bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denyAll = deny
}

// Calls returns how many times method+path was requested. path is the
// request path without the /api prefix, e.g. "/auth/refresh/".
func (f *FakeAPI) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

// TotalCalls counts every request the fake received.
func (f *FakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// LoggedOut returns refresh tokens the server was told to blacklist.
func (f *FakeAPI) LoggedOut() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loggedOut...)
}

// AddOrder stores o, assigning an ID and order number if missing.
func (f *FakeAPI) AddOrder(o models.Order) models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addOrderLocked(o)
}

func (f *FakeAPI) addOrderLocked(o models.Order) models.Order {
	if o.ID == 0 {
		f.nextID++
		o.ID = f.nextID
	}
	if o.OrderNumber == "" {
		o.OrderNumber = fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102"), o.ID)
	}
	if o.Restaurant == 0 {
		o.Restaurant = f.restaurant.ID
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	stored := o
	f.orders = append(f.orders, &stored)
	return stored
}

// SetOrderStatus changes an order's status directly.
func (f *FakeAPI) SetOrderStatus(id int64, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o := f.findOrderLocked(id); o != nil {
		o.Status = status
	}
}

// Order returns a stored order by number.
func (f *FakeAPI) Order(number string) (models.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.OrderNumber == number {
			return *o, true
		}
	}
	return models.Order{}, false
}

// MintToken signs a token the fake accepts. ttl may be negative for an
// already-expired token.
func (f *FakeAPI) MintToken(userID int64, tokenType string, ttl time.Duration) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mintLocked(userID, tokenType, ttl)
}

func (f *FakeAPI) mintLocked(userID int64, tokenType string, ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"token_type": tokenType,
		"gen":        f.generation,
		"exp":        time.Now().Add(ttl).Unix(),
		"jti":        strconv.FormatInt(time.Now().UnixNano(), 36),
	})
	signed, _ := token.SignedString(f.secret)
	return signed
}

func (f *FakeAPI) verifyLocked(raw, tokenType string) (jwt.MapClaims, bool) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return f.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != tokenType {
		return nil, false
	}
	if tokenType == "access" {
		if gen, _ := claims["gen"].(float64); int(gen) != f.generation {
			return nil, false
		}
	}
	return claims, true
}

// Routing

func (f *FakeAPI) router() *gin.Engine {
	r := gin.New()
	r.Use(f.countCalls)

	api := r.Group("/api")

	api.POST("/auth/login/", f.login)
	api.POST("/auth/refresh/", f.refreshToken)

	api.GET("/restaurants/", f.listRestaurants)
	api.GET("/restaurants/:id/", f.getRestaurant)
	api.GET("/qr/:code/", f.resolveQR)
	api.POST("/orders/", f.createOrder)
	api.GET("/orders/:number/", f.getOrder)

	authed := api.Group("", f.requireAuth)

	authed.GET("/auth/me/", f.me)
	authed.PATCH("/auth/me/", f.updateMe)
	authed.POST("/auth/logout/", f.logout)

	authed.GET("/kitchen/orders/", f.activeOrders)
	authed.GET("/kitchen/orders/:id/", f.kitchenOrderOrGrouped)
	authed.PATCH("/kitchen/orders/:id/update_status/", f.updateStatus)

	authed.GET("/manager/orders/", f.managerOrders)
	authed.GET("/manager/orders/stats/", f.stats)
	authed.PATCH("/manager/orders/:id/update_status/", f.updateStatus)

	authed.GET("/manager/menu-items/", f.listMenuItems)
	authed.POST("/manager/menu-items/", f.createMenuItem)
	authed.PATCH("/manager/menu-items/:id/", f.updateMenuItem)
	authed.DELETE("/manager/menu-items/:id/", f.deleteMenuItem)
	authed.PATCH("/manager/menu-items/:id/mark_special/", f.markSpecial)
	authed.PATCH("/manager/menu-items/:id/toggle_availability/", f.toggleAvailability)
	authed.GET("/manager/categories/", f.listCategories)

	authed.GET("/manager/restaurant/", f.managerRestaurant)
	authed.PATCH("/manager/restaurant/:id/", f.updateRestaurant)

	authed.GET("/manager/tables/", f.listTables)
	authed.POST("/manager/tables/", f.createTable)
	authed.PATCH("/manager/tables/:id/", f.updateTable)
	authed.DELETE("/manager/tables/:id/", f.deleteTable)
	authed.POST("/manager/tables/:id/regenerate_qr/", f.regenerateQR)
	authed.GET("/manager/tables/:id/qr_code_download/", f.downloadQR)

	return r
}

func (f *FakeAPI) countCalls(c *gin.Context) {
	f.mu.Lock()
	f.calls[c.Request.Method+" "+strings.TrimPrefix(c.Request.URL.Path, "/api")]++
	f.mu.Unlock()
	c.Next()
}

func (f *FakeAPI) requireAuth(c *gin.Context) {
	raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

	f.mu.Lock()
	claims, ok := f.verifyLocked(raw, "access")
	deny := f.denyAll
	f.mu.Unlock()

	if deny || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"detail": "Given token not valid for any token type",
			"code":   "token_not_valid",
		})
		return
	}
	uid, _ := claims["user_id"].(float64)
	c.Set("user_id", int64(uid))
	c.Next()
}

// Auth handlers

func (f *FakeAPI) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[req.Username]
	if !ok || u.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		User: u.user,
		Tokens: models.TokenPair{
			Access:  f.mintLocked(u.user.ID, "access", f.accessTTL),
			Refresh: f.mintLocked(u.user.ID, "refresh", 24*time.Hour),
		},
	})
}

func (f *FakeAPI) refreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"refresh": []string{"This field is required."}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	claims, ok := f.verifyLocked(req.Refresh, "refresh")
	if f.failRefresh || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	uid, _ := claims["user_id"].(float64)
	c.JSON(http.StatusOK, models.RefreshResponse{Access: f.mintLocked(int64(uid), "access", f.accessTTL)})
}

func (f *FakeAPI) userLocked(c *gin.Context) (models.User, bool) {
	id := c.GetInt64("user_id")
	for _, u := range f.users {
		if u.user.ID == id {
			return u.user, true
		}
	}
	return models.User{}, false
}

func (f *FakeAPI) me(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.userLocked(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (f *FakeAPI) updateMe(c *gin.Context) {
	var in models.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.userLocked(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = *in.PhoneNumber
	}
	entry := f.users[u.Username]
	entry.user = u
	f.users[u.Username] = entry

	c.JSON(http.StatusOK, u)
}

func (f *FakeAPI) logout(c *gin.Context) {
	var req models.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	f.mu.Lock()
	f.loggedOut = append(f.loggedOut, req.RefreshToken)
	f.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"detail": "Successfully logged out"})
}

// Customer handlers

func (f *FakeAPI) listRestaurants(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	summary := f.restaurant
	summary.MenuGroups = nil
	c.JSON(http.StatusOK, gin.H{"count": 1, "results": []models.Restaurant{summary}})
}

func (f *FakeAPI) getRestaurant(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := c.Param("id")
	if id != f.restaurant.Slug && id != strconv.FormatInt(f.restaurant.ID, 10) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, f.restaurant)
}

func (f *FakeAPI) resolveQR(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tables {
		if t.QRCode == c.Param("code") && t.IsActive {
			id := t.ID
			c.JSON(http.StatusOK, models.QRResolution{RestaurantID: t.Restaurant, TableID: &id})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Invalid QR code"})
}

func (f *FakeAPI) createOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	fields := gin.H{}
	if strings.TrimSpace(req.CustomerName) == "" {
		fields["customer_name"] = []string{"This field is required."}
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		fields["customer_phone"] = []string{"This field is required."}
	}
	if len(req.Items) == 0 {
		fields["items"] = []string{"At least one item is required."}
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if req.Restaurant != f.restaurant.Slug && req.Restaurant != strconv.FormatInt(f.restaurant.ID, 10) {
		c.JSON(http.StatusBadRequest, gin.H{"restaurant": []string{"Restaurant not found."}})
		return
	}

	order := models.Order{
		Restaurant:          f.restaurant.ID,
		Table:               req.TableID,
		Status:              models.StatusPending,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		SpecialInstructions: req.SpecialInstructions,
	}

	total := decimal.Zero
	for i, line := range req.Items {
		item, ok := f.restaurant.FindMenuItem(line.MenuItemID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Menu item %d not found", line.MenuItemID)})
			return
		}
		if !item.IsAvailable {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("%s is not available", item.Name)})
			return
		}
		price, _ := decimal.NewFromString(item.Price)
		subtotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)

		order.Items = append(order.Items, models.OrderItem{
			ID:       int64(i + 1),
			MenuItem: item.ID,
			MenuItemSnapshot: models.ItemSnapshot{
				Name:            item.Name,
				Price:           item.Price,
				PreparationTime: item.PreparationTime,
			},
			Quantity:            line.Quantity,
			UnitPrice:           price.StringFixed(2),
			Subtotal:            subtotal.StringFixed(2),
			SpecialInstructions: line.SpecialInstructions,
		})
	}
	order.TotalAmount = total.StringFixed(2)

	if req.TableID != nil {
		for _, t := range f.tables {
			if t.ID == *req.TableID {
				order.TableNumber = t.TableNumber
			}
		}
	}

	c.JSON(http.StatusCreated, f.addOrderLocked(order))
}

func (f *FakeAPI) getOrder(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.orders {
		if o.OrderNumber == c.Param("number") {
			c.JSON(http.StatusOK, o)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

// Kitchen and manager order handlers

var kitchenColumns = []string{models.StatusPending, models.StatusConfirmed, models.StatusPreparing, models.StatusReady}

var nextStatus = map[string]string{
	models.StatusPending:   models.StatusConfirmed,
	models.StatusConfirmed: models.StatusPreparing,
	models.StatusPreparing: models.StatusReady,
	models.StatusReady:     models.StatusServed,
}

func (f *FakeAPI) activeLocked() []models.Order {
	var active []models.Order
	for _, o := range f.orders {
		if _, ok := nextStatus[o.Status]; ok {
			active = append(active, *o)
		}
	}
	return active
}

func (f *FakeAPI) findOrderLocked(id int64) *models.Order {
	for _, o := range f.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (f *FakeAPI) activeOrders(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, f.activeLocked())
}

// kitchenOrderOrGrouped serves both /kitchen/orders/by_status/ and
// /kitchen/orders/:id/, which share a route segment.
func (f *FakeAPI) kitchenOrderOrGrouped(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c.Param("id") == "by_status" {
		grouped := make(map[string][]models.Order, len(kitchenColumns))
		for _, s := range kitchenColumns {
			grouped[s] = []models.Order{}
		}
		for _, o := range f.activeLocked() {
			grouped[o.Status] = append(grouped[o.Status], o)
		}
		c.JSON(http.StatusOK, grouped)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if o := f.findOrderLocked(id); err == nil && o != nil {
		c.JSON(http.StatusOK, o)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (f *FakeAPI) updateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": []string{"This field is required."}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	o := f.findOrderLocked(id)
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if nextStatus[o.Status] != req.Status && req.Status != models.StatusCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Cannot change status from %s to %s", o.Status, req.Status)})
		return
	}

	now := time.Now()
	o.Status = req.Status
	switch req.Status {
	case models.StatusConfirmed:
		o.ConfirmedAt = &now
	case models.StatusPreparing:
		o.PreparedAt = &now
	case models.StatusReady:
		o.ReadyAt = &now
	case models.StatusServed:
		o.ServedAt = &now
	}
	c.JSON(http.StatusOK, o)
}

func (f *FakeAPI) managerOrders(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := c.Query("status")
	orders := []models.Order{}
	for i := len(f.orders) - 1; i >= 0; i-- {
		if status == "" || f.orders[i].Status == status {
			orders = append(orders, *f.orders[i])
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "results": orders})
}

func (f *FakeAPI) stats(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var s models.OrderStats
	revenue := decimal.Zero
	counted := 0
	for _, o := range f.orders {
		s.TotalOrders++
		switch o.Status {
		case models.StatusPending:
			s.PendingOrders++
		case models.StatusConfirmed:
			s.ConfirmedOrders++
		case models.StatusPreparing:
			s.PreparingOrders++
		case models.StatusReady:
			s.ReadyOrders++
		case models.StatusServed:
			s.ServedOrders++
		case models.StatusCompleted:
			s.CompletedOrders++
		case models.StatusCancelled:
			s.CancelledOrders++
			continue
		}
		amount, _ := decimal.NewFromString(o.TotalAmount)
		revenue = revenue.Add(amount)
		counted++
	}

	average := decimal.Zero
	if counted > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(counted)))
	}
	s.TotalRevenue = jsonNumber(revenue)
	s.AverageOrderValue = jsonNumber(average)
	if v := c.Query("date_from"); v != "" {
		s.DateFrom = &v
	}
	if v := c.Query("date_to"); v != "" {
		s.DateTo = &v
	}
	c.JSON(http.StatusOK, s)
}

// Menu handlers

func (f *FakeAPI) menuItemLocked(c *gin.Context) *models.MenuItem {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil
	}
	for gi := range f.restaurant.MenuGroups {
		for ci := range f.restaurant.MenuGroups[gi].Categories {
			items := f.restaurant.MenuGroups[gi].Categories[ci].Items
			for ii := range items {
				if items[ii].ID == id {
					return &items[ii]
				}
			}
		}
	}
	return nil
}

func (f *FakeAPI) listMenuItems(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, f.restaurant.MenuItems())
}

func (f *FakeAPI) createMenuItem(c *gin.Context) {
	var in models.MenuItemInput
	if err := c.ShouldBindJSON(&in); err != nil || in.Name == nil || in.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"name": []string{"This field is required."}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	item := models.MenuItem{ID: f.nextID, IsAvailable: true}
	applyMenuItemInput(&item, in)

	cat := &f.restaurant.MenuGroups[0].Categories[0]
	cat.Items = append(cat.Items, item)
	c.JSON(http.StatusCreated, item)
}

func (f *FakeAPI) updateMenuItem(c *gin.Context) {
	var in models.MenuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	item := f.menuItemLocked(c)
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	applyMenuItemInput(item, in)
	c.JSON(http.StatusOK, item)
}

func applyMenuItemInput(item *models.MenuItem, in models.MenuItemInput) {
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Category != nil {
		item.Category = in.Category
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if in.PreparationTime != nil {
		item.PreparationTime = *in.PreparationTime
	}
	if in.DietaryTags != nil {
		item.DietaryTags = in.DietaryTags
	}
	if in.Allergens != nil {
		item.Allergens = in.Allergens
	}
}

func (f *FakeAPI) deleteMenuItem(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	for gi := range f.restaurant.MenuGroups {
		for ci := range f.restaurant.MenuGroups[gi].Categories {
			cat := &f.restaurant.MenuGroups[gi].Categories[ci]
			for ii := range cat.Items {
				if cat.Items[ii].ID == id {
					cat.Items = append(cat.Items[:ii], cat.Items[ii+1:]...)
					c.Status(http.StatusNoContent)
					return
				}
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (f *FakeAPI) markSpecial(c *gin.Context) {
	var req models.MarkSpecialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	item := f.menuItemLocked(c)
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	item.IsSpecialOfDay = req.IsSpecial
	c.JSON(http.StatusOK, item)
}

func (f *FakeAPI) toggleAvailability(c *gin.Context) {
	var req models.ToggleAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	item := f.menuItemLocked(c)
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	item.IsAvailable = req.IsAvailable
	c.JSON(http.StatusOK, item)
}

func (f *FakeAPI) listCategories(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var cats []models.MenuCategory
	for _, g := range f.restaurant.MenuGroups {
		cats = append(cats, g.Categories...)
	}
	c.JSON(http.StatusOK, cats)
}

// Restaurant handlers

func (f *FakeAPI) managerRestaurant(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"count": 1, "results": []models.Restaurant{f.restaurant}})
}

func (f *FakeAPI) updateRestaurant(c *gin.Context) {
	var in models.RestaurantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if c.Param("id") != strconv.FormatInt(f.restaurant.ID, 10) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if in.Name != nil {
		f.restaurant.Name = *in.Name
	}
	if in.Address != nil {
		f.restaurant.Address = *in.Address
	}
	if in.Phone != nil {
		f.restaurant.Phone = *in.Phone
	}
	c.JSON(http.StatusOK, f.restaurant)
}

// Table handlers

func (f *FakeAPI) tableIndexLocked(c *gin.Context) int {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	for i, t := range f.tables {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) listTables(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tables := append([]models.Table(nil), f.tables...)
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableNumber < tables[j].TableNumber })
	c.JSON(http.StatusOK, tables)
}

func (f *FakeAPI) createTable(c *gin.Context) {
	var in models.TableInput
	if err := c.ShouldBindJSON(&in); err != nil || in.TableNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"table_number": []string{"This field is required."}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	t := models.Table{
		ID:          f.nextID,
		Restaurant:  f.restaurant.ID,
		TableNumber: in.TableNumber,
		Capacity:    in.Capacity,
		IsActive:    in.IsActive,
		QRCode:      fmt.Sprintf("qr-%d-%d", f.nextID, time.Now().UnixNano()),
	}
	f.tables = append(f.tables, t)
	c.JSON(http.StatusCreated, t)
}

func (f *FakeAPI) updateTable(c *gin.Context) {
	var in models.TableInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.tableIndexLocked(c)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if in.TableNumber != "" {
		f.tables[i].TableNumber = in.TableNumber
	}
	if in.Capacity > 0 {
		f.tables[i].Capacity = in.Capacity
	}
	f.tables[i].IsActive = in.IsActive
	c.JSON(http.StatusOK, f.tables[i])
}

func (f *FakeAPI) deleteTable(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.tableIndexLocked(c)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	f.tables = append(f.tables[:i], f.tables[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (f *FakeAPI) regenerateQR(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.tableIndexLocked(c)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	f.tables[i].QRCode = fmt.Sprintf("qr-%d-%d", f.tables[i].ID, time.Now().UnixNano())
	c.JSON(http.StatusOK, f.tables[i])
}

// FakeQRImage is the body served by the QR download endpoint.
var FakeQRImage = []byte("\x89PNG\r\n\x1a\nfake-qr")

func (f *FakeAPI) downloadQR(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.tableIndexLocked(c) < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.Data(http.StatusOK, "image/png", FakeQRImage)
}
