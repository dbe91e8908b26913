package platform

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"github.com/Mohsinsiddi/w3fund/internal/campaign"
	"github.com/Mohsinsiddi/w3fund/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// ErrReadOnly is returned by write methods of a binding with no Writer.
var ErrReadOnly = errors.New("no signing wallet configured")

// Platform is a typed binding for CrowdfundingPlatform.
type Platform struct {
	c contract.Contract
	r contract.Reader
	w contract.Writer
}

// NewPlatform creates a Platform binding.
func NewPlatform(c contract.Contract, r contract.Reader, w contract.Writer) *Platform {
	return &Platform{c: c, r: r, w: w}
}

// Address returns the platform contract address.
func (p *Platform) Address() common.Address { return p.c.Address }

// GetCampaigns returns every campaign in contract order.
func (p *Platform) GetCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	out, err := p.r.Read(ctx, p.c, "getCampaigns")
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("getCampaigns: expected 1 output, got %d", len(out))
	}
	return decodeCampaigns(out[0])
}

// GetContributionByUser returns how much account has put into campaign id.
func (p *Platform) GetContributionByUser(ctx context.Context, id uint64, account common.Address) (*big.Int, error) {
	out, err := p.r.Read(ctx, p.c, "getContributionByUser", new(big.Int).SetUint64(id), account)
	if err != nil {
		return nil, err
	}
	return firstBig("getContributionByUser", out)
}

// Contribute pulls amount tokens from the caller into campaign id.
func (p *Platform) Contribute(ctx context.Context, id uint64, amount *big.Int) (common.Hash, error) {
	if p.w == nil {
		return common.Hash{}, ErrReadOnly
	}
	return p.w.Write(ctx, p.c, "contribute", new(big.Int).SetUint64(id), amount)
}

// Withdraw sends campaign id's raised funds to its creator.
func (p *Platform) Withdraw(ctx context.Context, id uint64) (common.Hash, error) {
	if p.w == nil {
		return common.Hash{}, ErrReadOnly
	}
	return p.w.Write(ctx, p.c, "withdraw", new(big.Int).SetUint64(id))
}

// decodeCampaigns converts the unpacked tuple[] into campaigns. Fields are
// looked up by name so extra tuple components are tolerated. When the tuple
// carries an id component it is used; otherwise ids are the one-based
// positions the contract itself uses as keys.
func decodeCampaigns(v interface{}) ([]campaign.Campaign, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("getCampaigns: unexpected output type %T", v)
	}

	out := make([]campaign.Campaign, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		el := rv.Index(i)
		if el.Kind() != reflect.Struct {
			return nil, fmt.Errorf("getCampaigns: element %d is %s, want struct", i, el.Kind())
		}

		c := campaign.Campaign{ID: uint64(i) + 1}
		if id, ok := bigField(el, "Id"); ok {
			if !id.IsUint64() {
				return nil, fmt.Errorf("getCampaigns: element %d has out-of-range id %s", i, id)
			}
			c.ID = id.Uint64()
		}
		if f := el.FieldByName("Creator"); f.IsValid() {
			if addr, ok := f.Interface().(common.Address); ok {
				c.Creator = addr
			}
		}
		c.Title = stringField(el, "Title")
		c.Description = stringField(el, "Description")

		c.Goal = new(big.Int)
		if g, ok := bigField(el, "Goal"); ok {
			c.Goal = g
		}
		c.AmountRaised = new(big.Int)
		if a, ok := bigField(el, "AmountRaised"); ok {
			c.AmountRaised = a
		}

		c.Status = campaign.StatusUnknown
		if f := el.FieldByName("Status"); f.IsValid() {
			switch f.Kind() {
			case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				if f.Uint() <= 255 {
					c.Status = campaign.ParseStatus(uint8(f.Uint()))
				}
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func stringField(v reflect.Value, name string) string {
	f := v.FieldByName(name)
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

func bigField(v reflect.Value, name string) (*big.Int, bool) {
	f := v.FieldByName(name)
	if !f.IsValid() {
		return nil, false
	}
	switch x := f.Interface().(type) {
	case *big.Int:
		if x == nil {
			return nil, false
		}
		return new(big.Int).Set(x), true
	default:
		switch f.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return new(big.Int).SetUint64(f.Uint()), true
		}
	}
	return nil, false
}

func firstBig(method string, out []interface{}) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%s: expected 1 output, got %d", method, len(out))
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, out[0])
	}
	return n, nil
}
