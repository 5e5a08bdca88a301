// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/returns"
)

// Rewards exposes the aggregate of all returns the oracle has confirmed.
type Rewards struct {
	accumulator *returns.Accumulator
}

// New creates the rewards endpoint group.
func New(accumulator *returns.Accumulator) *Rewards {
	return &Rewards{accumulator}
}

// TotalsView is the JSON presentation of processed return totals.
type TotalsView struct {
	Rewards         *big.Int `json:"rewards"`
	RewardsNoEL     *big.Int `json:"rewardsExcludingELRewards"`
	Principal       *big.Int `json:"principal"`
	ProcessedEvents uint64   `json:"processedEvents"`
}

func (r *Rewards) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	totals, err := r.accumulator.Totals()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &TotalsView{
		Rewards:         totals.Rewards,
		RewardsNoEL:     totals.RewardsNoEL,
		Principal:       totals.Principal,
		ProcessedEvents: totals.ProcessedEvents,
	})
}

// Mount mounts the endpoints to the given router.
func (r *Rewards) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("rewards_get_totals").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetTotals))
}
