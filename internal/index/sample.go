package index

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Veraticus/cashsearch/internal/model"
)

var sampleParties = []struct {
	name    string
	minAmt  float64
	maxAmt  float64
	entity  model.EntityType
	purpose string
}{
	{"Acme Supplies Ltd", 250, 12000, model.EntityPayment, "invoice settlement"},
	{"Globex Corporation", 1000, 50000, model.EntityPayment, "quarterly services"},
	{"Initech Payroll", 20000, 90000, model.EntityPayment, "payroll transfer"},
	{"Umbrella Logistics", 500, 8000, model.EntityPayment, "freight charges"},
	{"Stark Industries", 5000, 250000, model.EntityDeposit, "customer receipt"},
	{"Wayne Enterprises", 2500, 75000, model.EntityDeposit, "wire deposit"},
	{"Wonka Treasury", 100, 5000, model.EntityDeposit, "interest credit"},
	{"Cyberdyne Capital", 100000, 2000000, model.EntityLoan, "term loan drawdown"},
	{"Tyrell Finance", 50000, 500000, model.EntityLoan, "revolving credit facility"},
	{"Soylent Bank", 25000, 300000, model.EntityLoan, "equipment financing"},
}

var sampleStatuses = map[model.EntityType][]string{
	model.EntityPayment: {"PENDING", "APPROVED", "COMPLETED", "REJECTED"},
	model.EntityDeposit: {"RECEIVED", "CLEARED", "RETURNED"},
	model.EntityLoan:    {"ACTIVE", "PAID_OFF", "DEFAULTED"},
}

var sampleCurrencies = []string{"USD", "USD", "USD", "EUR", "GBP"}

var sampleEpoch = time.Date(2024, time.June, 30, 9, 0, 0, 0, time.UTC)

// Sample generates count deterministic records for seed. The same seed always
// yields the same records.
func Sample(count int, seed uint64) []model.SearchResult {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	records := make([]model.SearchResult, 0, count)
	for i := 0; i < count; i++ {
		party := sampleParties[rng.IntN(len(sampleParties))]
		statuses := sampleStatuses[party.entity]
		amount := party.minAmt + rng.Float64()*(party.maxAmt-party.minAmt)

		var prefix string
		switch party.entity {
		case model.EntityPayment:
			prefix = "PAY"
		case model.EntityDeposit:
			prefix = "DEP"
		default:
			prefix = "LN"
		}

		records = append(records, model.SearchResult{
			EntityType:        party.entity,
			EntityID:          int64(i + 1),
			PrimaryIdentifier: fmt.Sprintf("%s-%06d", prefix, 100000+i),
			Date:              model.Timestamp{Time: sampleEpoch.Add(-time.Duration(i) * 7 * time.Hour)},
			Amount:            math.Round(amount*100) / 100,
			Currency:          sampleCurrencies[rng.IntN(len(sampleCurrencies))],
			Status:            statuses[rng.IntN(len(statuses))],
			PartyInfo:         party.name,
			Description:       fmt.Sprintf("%s for %s", party.purpose, party.name),
			ReferenceNumber:   fmt.Sprintf("REF%08d", rng.IntN(100000000)),
		})
	}
	return records
}
