package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// OLS is an ordinary least squares linear regression with intercept.
type OLS struct {
	coefficients []float64
}

func NewOLS() *OLS {
	return &OLS{}
}

// Fit solves the least squares problem through a QR factorisation of the design matrix.
func (o *OLS) Fit(x mat.Matrix, y []float64) error {
	xx, yy, err := rows(x, y)
	if err != nil {
		return err
	}
	if len(xx) == 0 {
		return fmt.Errorf("no labeled rows: %w", NotEnoughDataErr)
	}
	d := len(xx[0]) + 1
	if len(xx) < d {
		return fmt.Errorf("%d rows for %d coefficients: %w", len(xx), d, NotEnoughDataErr)
	}

	a := design(xx)
	b := mat.NewDense(len(yy), 1, yy)
	c := mat.NewDense(d, 1, nil)

	qr := new(mat.QR)
	qr.Factorize(a)
	if err := qr.SolveTo(c, false, b); err != nil {
		return fmt.Errorf("could not solve least squares: %w", err)
	}

	o.coefficients = mat.Col(nil, 0, c)
	return nil
}

func (o *OLS) Predict(x []float64) (float64, error) {
	if o.coefficients == nil {
		return 0, NotTrainedErr
	}
	if len(x)+1 != len(o.coefficients) {
		return 0, fmt.Errorf("%d features for %d coefficients", len(x), len(o.coefficients))
	}
	v := o.coefficients[0]
	for i, f := range x {
		v += o.coefficients[i+1] * f
	}
	return v, nil
}

// design prepends the intercept column to the given rows.
func design(xx [][]float64) *mat.Dense {
	a := mat.NewDense(len(xx), len(xx[0])+1, nil)
	for i, row := range xx {
		a.Set(i, 0, 1)
		for j, f := range row {
			a.Set(i, j+1, f)
		}
	}
	return a
}
