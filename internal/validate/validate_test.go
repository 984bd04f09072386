package validate_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

func TestRequiredEmailPhone(t *testing.T) {
	c := qt.New(t)
	c.Assert(validate.Required("name", "  ", "Nome é obrigatório"), qt.ErrorMatches, "Nome é obrigatório")
	c.Assert(validate.Required("name", "Ana", "x"), qt.IsNil)

	c.Assert(validate.Email("email", "ana@ravic.com.br"), qt.IsNil)
	c.Assert(validate.Email("email", "Ana <ana@ravic.com.br>"), qt.Not(qt.IsNil))
	c.Assert(validate.Email("email", "ana"), qt.Not(qt.IsNil))

	c.Assert(validate.Phone("phone", "(27) 99999-1234"), qt.IsNil)
	c.Assert(validate.Phone("phone", "+55 27 99999-1234"), qt.IsNil)
	c.Assert(validate.Phone("phone", "1234"), qt.Not(qt.IsNil))

	var verr *validate.ValidationError
	err := validate.First(nil, validate.Phone("phone", "1"), validate.Email("email", "x"))
	c.Assert(errors.As(err, &verr), qt.IsTrue)
	c.Assert(verr.Field, qt.Equals, "phone")
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Anel Solitário Ouro 18k": "anel-solitario-ouro-18k",
		"  Coleção  Verão!! ":     "colecao-verao",
		"Brinco--Pérola":          "brinco-perola",
		"***":                     "",
		"Ẽ Ýs Øre Straße Œuvre":   "e-ys-ore-strasse-oeuvre",
		"ANÉIS DE PRATA 925":      "aneis-de-prata-925",
		"e\u0301clat":             "eclat",
	}
	for in, want := range tests {
		qt.Assert(t, validate.Slugify(in), qt.Equals, want)
	}
}
