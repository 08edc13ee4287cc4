// Package classifier ties the condition, prediction, and action slots
// together into the single rule the evolutionary loop operates on. The
// loop itself — match-set/action-set formation, GA subsumption, fitness
// and error update rules — sits outside this core; only the slots and
// their per-classifier bookkeeping live here.
package classifier

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/xcsf-go/core/classifier/action"
	"github.com/xcsf-go/core/classifier/condition"
	"github.com/xcsf-go/core/classifier/prediction"
	"github.com/xcsf-go/core/loss"
	"github.com/xcsf-go/core/params"
)

// Classifier is one rule: a condition predicate, a prediction function,
// an action, plus the bookkeeping fields the Data Model lists as part of
// a classifier. Fitness/error/experience are exposed as plain fields
// since the rule governing their update belongs to the out-of-scope
// GA/RL loop; this core only carries the slots and their state.
type Classifier struct {
	Condition condition.Condition
	Prediction prediction.Prediction
	Action     action.Action

	Fitness    float64
	Error      float64
	Experience int
	Numerosity int
	TimeStamp  int
}

func parseCondTag(s string) (condition.Tag, error) {
	switch strings.ToUpper(s) {
	case "TERNARY":
		return condition.Ternary, nil
	case "RECTANGLE":
		return condition.Rectangle, nil
	case "ELLIPSOID":
		return condition.Ellipsoid, nil
	case "GP_TREE", "GPTREE":
		return condition.GPTree, nil
	case "NEURAL":
		return condition.Neural, nil
	case "DGP":
		return condition.DGP, nil
	default:
		return 0, fmt.Errorf("classifier: unknown COND_TYPE %q", s)
	}
}

func parsePredTag(s string) (prediction.Tag, error) {
	switch strings.ToUpper(s) {
	case "CONSTANT":
		return prediction.Constant, nil
	case "NLMS_LINEAR", "NLMSLINEAR":
		return prediction.NLMSLinear, nil
	case "NLMS_QUADRATIC", "NLMSQUADRATIC":
		return prediction.NLMSQuadratic, nil
	case "RLS_LINEAR", "RLSLINEAR":
		return prediction.RLSLinear, nil
	case "RLS_QUADRATIC", "RLSQUADRATIC":
		return prediction.RLSQuadratic, nil
	case "NEURAL":
		return prediction.Neural, nil
	default:
		return 0, fmt.Errorf("classifier: unknown PRED_TYPE %q", s)
	}
}

func parseActTag(s string) (action.Tag, error) {
	switch strings.ToUpper(s) {
	case "INTEGER":
		return action.Integer, nil
	case "NEURAL":
		return action.Neural, nil
	default:
		return 0, fmt.Errorf("classifier: unknown ACT_TYPE %q", s)
	}
}

// New performs the once-per-classifier tag read and factory dispatch for
// all three slots, reading hp.CondType/PredType/ActType (§4.4). nActions
// bounds the discrete action value; it is not itself a recognised
// hyperparameter, so the caller, which owns the environment's action
// space, supplies it directly, the same way gp.Grow takes an explicit
// input-dimensionality parameter the documented signature omits.
// hp.LossFunc is validated here against the registered loss functions so
// the dependency is exercised even though Net.Learn's delta rule is fixed
// by §4.2 rather than parameterised by a pluggable loss.
func New(hp *params.Hyperparameters, consts params.GPConstants, nActions int, rng *rand.Rand) (*Classifier, error) {
	condTag, err := parseCondTag(hp.CondType)
	if err != nil {
		return nil, err
	}
	predTag, err := parsePredTag(hp.PredType)
	if err != nil {
		return nil, err
	}
	actTag, err := parseActTag(hp.ActType)
	if err != nil {
		return nil, err
	}
	if _, err := loss.DynamicLoss[float64](hp.LossFunc); err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	cond, err := condition.New(condTag, hp, consts, rng)
	if err != nil {
		return nil, fmt.Errorf("classifier: condition: %w", err)
	}
	pred, err := prediction.New(predTag, hp, rng)
	if err != nil {
		return nil, fmt.Errorf("classifier: prediction: %w", err)
	}
	act, err := action.New(actTag, nActions, hp, rng)
	if err != nil {
		return nil, fmt.Errorf("classifier: action: %w", err)
	}

	return &Classifier{
		Condition:  cond,
		Prediction: pred,
		Action:     act,
		Fitness:    hp.InitFitness,
		Error:      hp.InitError,
		Experience: 0,
		Numerosity: 1,
	}, nil
}

// Cover forwards to Condition.Cover per §4.4's covering contract: mutate
// the condition until it matches input, sizing any per-dimension state
// from len(input) on first use. The prediction and action slots size
// themselves lazily on their own first use (Prediction.Cover / the first
// Action.Compute) rather than through this entry point, since covering is
// specified purely in terms of the condition's match predicate.
func (c *Classifier) Cover(input []float64, hp *params.Hyperparameters, rng *rand.Rand) {
	c.Condition.Cover(input, hp, rng)
}

// Copy returns a deep copy: mutating it never observably changes c.
func (c *Classifier) Copy() *Classifier {
	return &Classifier{
		Condition:  c.Condition.Copy(),
		Prediction: c.Prediction.Copy(),
		Action:     c.Action.Copy(),
		Fitness:    c.Fitness,
		Error:      c.Error,
		Experience: c.Experience,
		Numerosity: c.Numerosity,
		TimeStamp:  c.TimeStamp,
	}
}

// Print renders a one-line summary of every slot, in the teacher's
// Print-as-debug-string idiom.
func (c *Classifier) Print() string {
	return fmt.Sprintf("Classifier{cond: %s, pred: %s, act: %s, fitness: %.4f, error: %.4f, exp: %d, num: %d}",
		c.Condition.Print(), c.Prediction.Print(), c.Action.Print(), c.Fitness, c.Error, c.Experience, c.Numerosity)
}

// Save writes every slot followed by the bookkeeping fields, in the
// order Load reads them back.
func (c *Classifier) Save(w io.Writer) error {
	if err := c.Condition.Save(w); err != nil {
		return err
	}
	if err := c.Prediction.Save(w); err != nil {
		return err
	}
	if err := c.Action.Save(w); err != nil {
		return err
	}
	return writeScalars(w, c.Fitness, c.Error, float64(c.Experience), float64(c.Numerosity), float64(c.TimeStamp))
}

// Load is the mirror of Save; the caller must have already installed the
// correct slot representations (e.g. via New with the same hp) since the
// slot formats do not self-describe their tag.
func (c *Classifier) Load(r io.Reader) error {
	if err := c.Condition.Load(r); err != nil {
		return err
	}
	if err := c.Prediction.Load(r); err != nil {
		return err
	}
	if err := c.Action.Load(r); err != nil {
		return err
	}
	var fitness, errVal, experience, numerosity, timestamp float64
	if err := readScalars(r, &fitness, &errVal, &experience, &numerosity, &timestamp); err != nil {
		return err
	}
	c.Fitness, c.Error = fitness, errVal
	c.Experience, c.Numerosity, c.TimeStamp = int(experience), int(numerosity), int(timestamp)
	return nil
}
