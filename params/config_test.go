package params

import (
	"strings"
	"testing"
)

const validConfig = `
# sample config
POP_SIZE = 200
MAX_TRIALS = 100000
THETA_EA = 50
THETA_DEL = 20
THETA_SUB = 20
BETA = 0.1
ALPHA = 0.1
NU = 5
DELTA = 0.1
EPS_0 = 0.01
ERR_REDUC = 1
FIT_REDUC = 0.1
INIT_ERROR = 0
INIT_FITNESS = 0.01
EA_SELECT_TYPE = ROULETTE
EA_SELECT_SIZE = 0.4
EA_SUBSUMPTION = true
SET_SUBSUMPTION = true
P_CROSSOVER = 0.8
LAMBDA = 2
GAMMA = 0.95
P_EXPLORE = 0
TELETRANSPORTATION = 0.5
MAX_T = 1
MAX_K = 1
PERF_AVG_TRIALS = 1000

COND_TYPE = RECTANGLE
PRED_TYPE = NLMS_LINEAR
ACT_TYPE = INTEGER
SAM_TYPE = LOG_NORMAL
SAM_NUM = 1
SAM_MIN = 0.0001
GP_NUM_CONS = 100
GP_INIT_DEPTH = 5
GP_MAX_LEN = 2048
COND_NUM_HIDDEN_NEURONS = 1
COND_MAX_HIDDEN_NEURONS = 1
COND_HIDDEN_NEURON_ACTIVATION = RELU
PRED_NUM_HIDDEN_NEURONS = 1
PRED_MAX_HIDDEN_NEURONS = 1
PRED_HIDDEN_NEURON_ACTIVATION = RELU
PRED_ETA = 0.1
PRED_MOMENTUM = 0
PRED_RLS_LAMBDA = 1
PRED_RLS_SCALE_FACTOR = 1000
PRED_X0 = 1
PRED_SGD_WEIGHTS = false
PRED_EVOLVE_ETA = false
PRED_RESET = false
COND_MIN = 0
COND_MAX = 1
COND_SMIN = 0.1
COND_ETA = 0
COND_EVOLVE_WEIGHTS = false
COND_EVOLVE_NEURONS = false
COND_EVOLVE_FUNCTIONS = false
PRED_EVOLVE_WEIGHTS = false
PRED_EVOLVE_NEURONS = false
PRED_EVOLVE_FUNCTIONS = false
P_MUTATION = 0.1
F_MUTATION = 0.1
S_MUTATION = 0.1
E_MUTATION = 0.1
LOSS_FUNC = MAE
OMP_NUM_THREADS = 1
`

func TestParseValid(t *testing.T) {
	hp, err := parse(strings.NewReader(validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hp.PopSize != 200 {
		t.Errorf("PopSize = %d, want 200", hp.PopSize)
	}
	if hp.CondType != "RECTANGLE" {
		t.Errorf("CondType = %q, want RECTANGLE", hp.CondType)
	}
	if !hp.EASubsumption {
		t.Errorf("EASubsumption = false, want true")
	}
	if hp.PredSGDWeights {
		t.Errorf("PredSGDWeights = true, want false")
	}
}

func TestParseMissingKey(t *testing.T) {
	withoutLambda := strings.Replace(validConfig, "LAMBDA = 2\n", "", 1)
	if _, err := parse(strings.NewReader(withoutLambda)); err == nil {
		t.Fatal("expected error for missing LAMBDA key")
	}
}

func TestParseBlankAndWhitespaceLinesIgnored(t *testing.T) {
	cfg := validConfig + "\n   \n\t\n"
	if _, err := parse(strings.NewReader(cfg)); err != nil {
		t.Fatalf("unexpected error on trailing whitespace lines: %v", err)
	}
}

func TestParseInvalidInteger(t *testing.T) {
	bad := strings.Replace(validConfig, "POP_SIZE = 200\n", "POP_SIZE = abc\n", 1)
	if _, err := parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for invalid integer")
	}
}

func TestParseCommentOnSameLine(t *testing.T) {
	cfg := strings.Replace(validConfig, "GAMMA = 0.95\n", "GAMMA = 0.95 # discount factor\n", 1)
	hp, err := parse(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hp.Gamma != 0.95 {
		t.Errorf("Gamma = %v, want 0.95", hp.Gamma)
	}
}
