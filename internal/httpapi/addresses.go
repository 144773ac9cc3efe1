package httpapi

import "net/http"

type createAddressRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Address   string  `json:"address" validate:"required,max=500"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	City      string  `json:"city" validate:"max=200"`
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.addresses.List(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	var req createAddressRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	addr, err := h.addresses.Create(r.Context(), req.Name, req.Address, req.Latitude, req.Longitude, req.City, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addr)
}

type updateAddressRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Address   string  `json:"address" validate:"required,max=500"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateAddressRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	addr, err := h.addresses.Update(r.Context(), id, req.Name, req.Address, req.Latitude, req.Longitude, principalFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.addresses.Delete(r.Context(), id, principalFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeNoContent(w)
}
