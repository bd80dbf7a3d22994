package usecase

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// polynomialModel is a degree-2 polynomial regression fit. A model is
// constructed fresh for every prediction call and discarded afterwards;
// coefficients never leak between flights.
type polynomialModel struct {
	weights *mat.VecDense
}

// expandQuadratic maps a feature vector to its degree-2 polynomial
// expansion: bias, linear terms, then all pairwise products including
// squares.
func expandQuadratic(features []float64) []float64 {
	n := len(features)
	expanded := make([]float64, 0, 1+n+n*(n+1)/2)
	expanded = append(expanded, 1)
	expanded = append(expanded, features...)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			expanded = append(expanded, features[i]*features[j])
		}
	}
	return expanded
}

// fitPolynomialModel solves the least-squares fit of targets on the
// expanded features. The system is usually underdetermined for short
// histories, so it is solved through a rank-revealing SVD rather than
// a plain normal-equation inverse.
func fitPolynomialModel(features [][]float64, targets []float64) (*polynomialModel, error) {
	if len(features) == 0 || len(features) != len(targets) {
		return nil, errors.New("feature and target lengths do not match")
	}

	expanded := make([][]float64, len(features))
	for i, row := range features {
		expanded[i] = expandQuadratic(row)
	}

	rows := len(expanded)
	cols := len(expanded[0])

	design := mat.NewDense(rows, cols, nil)
	for i, row := range expanded {
		design.SetRow(i, row)
	}
	response := mat.NewDense(rows, 1, targets)

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}

	rank := svd.Rank(1e-10)
	if rank == 0 {
		return nil, errors.New("design matrix has zero rank")
	}

	var solution mat.Dense
	svd.SolveTo(&solution, response, rank)

	weights := mat.NewVecDense(cols, nil)
	for i := 0; i < cols; i++ {
		weights.SetVec(i, solution.At(i, 0))
	}

	return &polynomialModel{weights: weights}, nil
}

// predict evaluates the fitted polynomial at one feature vector
func (m *polynomialModel) predict(features []float64) float64 {
	expanded := expandQuadratic(features)
	return mat.Dot(mat.NewVecDense(len(expanded), expanded), m.weights)
}
