package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"lostfound-server/internal/app"
	"lostfound-server/internal/model"
)

const bearerPrefix = "Bearer "

// extractToken pulls the bearer token out of the Authorization header,
// enforcing the "Bearer " prefix and total length 39 from §6.1 before it
// ever reaches Application — a missing or malformed header is invalidToken
// regardless of whether the token itself would parse. The 32 characters
// after the prefix are checked for lowercase hex by Application.
func extractToken(r *http.Request) (app.Token, *app.Error) {
	header := r.Header.Get("Authorization")
	if len(header) != len(bearerPrefix)+32 || !strings.HasPrefix(header, bearerPrefix) {
		return "", &app.Error{Kind: app.KindInvalidToken, Message: "missing or malformed Authorization header"}
	}
	return app.Token(header[len(bearerPrefix):]), nil
}

type mapSummaryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	summaries := s.App.ListMaps()
	out := make([]mapSummaryView, 0, len(summaries))
	for _, m := range summaries {
		out = append(out, mapSummaryView{ID: string(m.ID), Name: m.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

type roadView struct {
	X0 float64  `json:"x0"`
	Y0 float64  `json:"y0"`
	X1 *float64 `json:"x1,omitempty"`
	Y1 *float64 `json:"y1,omitempty"`
}

type buildingView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type officeView struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

type mapDetailView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Roads     []roadView     `json:"roads"`
	Buildings []buildingView `json:"buildings"`
	Offices   []officeView   `json:"offices"`
	LootTypes []lootTypeView `json:"lootTypes"`
}

type lootTypeView struct {
	Value uint `json:"value"`
}

func (s *Server) handleMapByID(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/maps/")
	if id == "" {
		writeBadRequest(w, "missing map id")
		return
	}

	m, err := s.App.FindMap(model.MapID(id))
	if err != nil {
		writeAppError(w, err)
		return
	}

	view := mapDetailView{ID: string(m.ID), Name: m.Name}
	for _, rd := range m.Roads {
		rv := roadView{X0: rd.Start.X, Y0: rd.Start.Y}
		if rd.IsHorizontal() {
			x1 := rd.End.X
			rv.X1 = &x1
		} else {
			y1 := rd.End.Y
			rv.Y1 = &y1
		}
		view.Roads = append(view.Roads, rv)
	}
	for _, b := range m.Buildings {
		view.Buildings = append(view.Buildings, buildingView{
			X: b.Bounds.Min.X, Y: b.Bounds.Min.Y,
			W: b.Bounds.Max.X - b.Bounds.Min.X, H: b.Bounds.Max.Y - b.Bounds.Min.Y,
		})
	}
	for _, o := range m.Offices() {
		view.Offices = append(view.Offices, officeView{
			ID: o.ID, X: o.Position.X, Y: o.Position.Y, OffsetX: o.OffsetX, OffsetY: o.OffsetY,
		})
	}
	for _, v := range m.LootSettings.Values {
		view.LootTypes = append(view.LootTypes, lootTypeView{Value: v})
	}

	writeJSON(w, http.StatusOK, view)
}

type joinRequest struct {
	UserName string `json:"userName"`
	MapID    string `json:"mapId"`
}

type joinResponse struct {
	AuthToken string `json:"authToken"`
	PlayerID  uint32 `json:"playerId"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, &app.Error{Kind: app.KindInvalidArgument, Message: "malformed JSON body"})
		return
	}

	tok, _, dogID, appErr := s.App.JoinGame(model.MapID(req.MapID), req.UserName)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, joinResponse{AuthToken: string(tok), PlayerID: uint32(dogID)})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	tok, terr := extractToken(r)
	if terr != nil {
		writeAppError(w, terr)
		return
	}

	list, appErr := s.App.GetPlayerList(tok)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	out := make(map[string]map[string]string, len(list))
	for _, p := range list {
		out[itoa(uint32(p.DogID))] = map[string]string{"name": p.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

type bagItemView struct {
	ID   int  `json:"id"`
	Type uint `json:"type"`
}

type playerStateView struct {
	Pos   [2]float64    `json:"pos"`
	Speed [2]float64    `json:"speed"`
	Dir   string        `json:"dir"`
	Bag   []bagItemView `json:"bag"`
	Score uint          `json:"score"`
}

type lostObjectView struct {
	Type uint       `json:"type"`
	Pos  [2]float64 `json:"pos"`
}

type gameStateResponse struct {
	Players     map[string]playerStateView `json:"players"`
	LostObjects map[string]lostObjectView   `json:"lostObjects"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	tok, terr := extractToken(r)
	if terr != nil {
		writeAppError(w, terr)
		return
	}

	dogs, appErr := s.App.GetGameStateList(tok)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	lost, appErr := s.App.GetLostObjects(tok)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	resp := gameStateResponse{
		Players:     make(map[string]playerStateView, len(dogs)),
		LostObjects: make(map[string]lostObjectView, len(lost)),
	}
	for _, d := range dogs {
		bag := make([]bagItemView, 0, len(d.Bag))
		for _, item := range d.Bag {
			bag = append(bag, bagItemView{ID: item.ID, Type: item.Type})
		}
		resp.Players[itoa(uint32(d.DogID))] = playerStateView{
			Pos: d.Position, Speed: d.Velocity, Dir: d.Direction, Bag: bag, Score: d.Score,
		}
	}
	for _, o := range lost {
		resp.LostObjects[itoa(uint32(o.ID))] = lostObjectView{
			Type: o.Type, Pos: [2]float64{o.Position.X, o.Position.Y},
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type actionRequest struct {
	Move string `json:"move"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tok, terr := extractToken(r)
	if terr != nil {
		writeAppError(w, terr)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, &app.Error{Kind: app.KindInvalidArgument, Message: "malformed JSON body"})
		return
	}

	if appErr := s.App.SetPlayerAction(tok, req.Move); appErr != nil {
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

type tickRequest struct {
	TimeDelta float64 `json:"timeDelta"`
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.AutoTick {
		writeBadRequest(w, "manual tick is disabled while auto-tick is enabled")
		return
	}

	var req tickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TimeDelta < 0 {
		writeBadRequest(w, "malformed timeDelta")
		return
	}

	s.App.Tick(req.TimeDelta)
	writeJSON(w, http.StatusOK, struct{}{})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func itoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
