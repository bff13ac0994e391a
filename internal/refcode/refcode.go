package refcode

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	hashids "github.com/speps/go-hashids/v2"
)

// Generator produces short public reference codes for ads so listing URLs
// and support tickets never expose raw database ids.
type Generator struct {
	h *hashids.HashID
}

func NewGenerator(salt string) (*Generator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Generator{h: h}, nil
}

// Generate derives a code from the owner id plus a random nonce, so codes
// are unique per submission even for the same owner.
func (g *Generator) Generate(ownerID int64) (string, error) {
	nonce := uuid.New().ID()

	code, err := g.h.EncodeInt64([]int64{ownerID, int64(nonce)})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BZ-%s", strings.ToUpper(code)), nil
}
