package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/mo"
	"github.com/tidwall/gjson"
)

// Step identifies one stage of the storefront pipeline.
type Step int

const (
	StepVersion Step = iota + 1
	StepRegion
	StepUserInfo
	StepEntitlement
	StepStorefront
)

var stepNames = map[Step]string{
	StepVersion:     "version",
	StepRegion:      "region",
	StepUserInfo:    "userinfo",
	StepEntitlement: "entitlement",
	StepStorefront:  "storefront",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var errInvalidJSON = errors.New("body is not valid JSON")

type outcome int

const (
	outcomeOK outcome = iota
	outcomeRecoverable
	outcomeFatal
)

// stepResult is what a stage hands back to the driver loop.
type stepResult struct {
	outcome outcome
	err     error
}

func stepOK() stepResult { return stepResult{outcome: outcomeOK} }
func stepRecoverable(err error) stepResult { return stepResult{outcome: outcomeRecoverable, err: err} }
func stepFatal(err error) stepResult { return stepResult{outcome: outcomeFatal, err: err} }

// runState is the context of a single pipeline run. Each stage reads what
// earlier stages produced; nothing is shared between runs.
type runState struct {
	id    string
	creds Credentials

	version string
	shard   string

	puuid       string
	gameName    string
	entitlement string
	storefront  string

	emit func(string)
}

func (st *runState) logf(format string, args ...any) {
	st.emit(fmt.Sprintf(format, args...))
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	ID         string
	Storefront string
	GameName   string
	Shard      string
	Version    string
	Err        error
}

// Pipeline resolves identity, region and entitlement and then loads the
// storefront. Version and region failures degrade to defaults; any later
// failure ends the run.
//
// Stages call APIClient.Send directly because each needs the typed failure to
// pick its outcome. Callers that only want body-or-message completion use
// APIClient.SendAsync with a Callback instead.
type Pipeline struct {
	api            *APIClient
	endpoints      Endpoints
	defaultVersion string
	defaultShard   string
	logger         Logger
}

func NewPipeline(api *APIClient, endpoints Endpoints, defaultVersion, defaultShard string, logger Logger) *Pipeline {
	if logger == nil {
		logger = nopLogger{}
	}
	if defaultVersion == "" {
		defaultVersion = GetClientVersion()
	}
	if defaultShard == "" {
		defaultShard = fallbackRegion
	}
	return &Pipeline{
		api:            api,
		endpoints:      endpoints,
		defaultVersion: defaultVersion,
		defaultShard:   defaultShard,
		logger:         logger,
	}
}

type stage struct {
	step   Step
	banner func(st *runState) string
	run    func(ctx context.Context, st *runState) stepResult
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{StepVersion, func(*runState) string { return "Step 1/5: fetching latest client version..." }, p.fetchVersion},
		{StepRegion, func(*runState) string { return "Step 2/5: detecting player region..." }, p.fetchRegion},
		{StepUserInfo, func(*runState) string { return "Step 3/5: fetching player identity..." }, p.fetchUserInfo},
		{StepEntitlement, func(*runState) string { return "Step 4/5: fetching entitlement token..." }, p.fetchEntitlement},
		{StepStorefront, func(st *runState) string { return fmt.Sprintf("Step 5/5: loading storefront (%s)...", st.shard) }, p.fetchStorefront},
	}
}

// Run executes every stage in order and reports one line per transition
// through onLog. The last line is either the storefront body or the error
// that ended the run. Run never panics.
func (p *Pipeline) Run(ctx context.Context, runID string, creds Credentials, onLog func(string)) (result RunResult) {
	if onLog == nil {
		onLog = func(string) {}
	}
	log := &runLogger{id: runID, base: p.logger}

	st := &runState{
		id:      runID,
		creds:   creds,
		version: p.defaultVersion,
		shard:   p.defaultShard,
		emit:    onLog,
	}

	defer func() {
		if r := recover(); r != nil {
			err := NewFatalError(fmt.Errorf("pipeline panic: %v", r))
			log.Log("FATAL: %v", err)
			onLog(fmt.Sprintf("Error: %v", err))
			result = st.result(err)
		}
	}()

	for _, s := range p.stages() {
		onLog(s.banner(st))

		res := s.run(ctx, st)
		switch res.outcome {
		case outcomeOK:
			log.Log("%s ok", s.step)
		case outcomeRecoverable:
			log.Log("%s degraded (%s): %v", s.step, FailureKind(res.err), res.err)
		case outcomeFatal:
			err := NewFatalError(&StepError{Step: s.step, Err: res.err})
			log.Log("%s failed (%s): %v", s.step, FailureKind(res.err), res.err)
			onLog(fmt.Sprintf("Error: %v", err))
			return st.result(err)
		}
	}

	onLog(st.storefront)
	return st.result(nil)
}

func (st *runState) result(err error) RunResult {
	r := RunResult{
		ID:       st.id,
		GameName: st.gameName,
		Shard:    st.shard,
		Version:  st.version,
		Err:      err,
	}
	if err == nil {
		r.Storefront = st.storefront
	}
	return r
}

func (p *Pipeline) fetchVersion(ctx context.Context, st *runState) stepResult {
	req, err := p.api.VersionRequest(p.endpoints.Version)
	if err != nil {
		st.logf("Warning: could not build version request, continuing with %s", st.version)
		return stepRecoverable(err)
	}

	body, err := p.api.Send(ctx, req, "RiotVersion")
	if err != nil {
		st.logf("Warning: could not fetch client version (%v), continuing with %s", err, st.version)
		return stepRecoverable(err)
	}

	version, err := parseClientVersion(body)
	if err != nil {
		st.logf("Warning: could not parse client version, continuing with %s", st.version)
		return stepRecoverable(err)
	}

	st.version = version
	st.logf("Client version: %s", st.version)
	return stepOK()
}

func (p *Pipeline) fetchRegion(ctx context.Context, st *runState) stepResult {
	req, err := p.api.GeoRequest(p.endpoints.Geo, st.creds)
	if err != nil {
		st.logf("Warning: region detection failed (%v), using %s", err, st.shard)
		return stepRecoverable(err)
	}

	body, err := p.api.Send(ctx, req, "RiotRegion")
	if err != nil {
		st.logf("Warning: region detection failed (%v), using %s", err, st.shard)
		return stepRecoverable(err)
	}

	live, err := jsonString(body, "affinities.live")
	if err != nil {
		st.logf("Warning: region detection failed (%v), using %s", err, st.shard)
		return stepRecoverable(err)
	}

	shard := resolveShard(live)
	if shard.IsAbsent() {
		st.logf("Warning: region was empty, using %s", st.shard)
		return stepRecoverable(&ParseError{Field: "affinities.live"})
	}

	st.shard = shard.MustGet()
	if live != st.shard {
		st.logf("Region detected: %s -> %s", live, st.shard)
	} else {
		st.logf("Region detected: %s", st.shard)
	}
	return stepOK()
}

func (p *Pipeline) fetchUserInfo(ctx context.Context, st *runState) stepResult {
	req, err := p.api.UserInfoRequest(p.endpoints.UserInfo, st.creds.AccessToken)
	if err != nil {
		return stepFatal(err)
	}

	body, err := p.api.Send(ctx, req, "RiotUserInfo")
	if err != nil {
		return stepFatal(err)
	}

	puuid, err := jsonNonEmptyString(body, "sub")
	if err != nil {
		return stepFatal(err)
	}
	gameName, err := jsonString(body, "acct.game_name")
	if err != nil {
		return stepFatal(err)
	}

	st.puuid = puuid
	st.gameName = gameName
	st.logf("Player: %s", st.gameName)
	return stepOK()
}

func (p *Pipeline) fetchEntitlement(ctx context.Context, st *runState) stepResult {
	req, err := p.api.EntitlementRequest(p.endpoints.Entitlement, st.creds.AccessToken)
	if err != nil {
		return stepFatal(err)
	}

	body, err := p.api.Send(ctx, req, "RiotEntitlement")
	if err != nil {
		return stepFatal(err)
	}

	token, err := jsonNonEmptyString(body, "entitlements_token")
	if err != nil {
		return stepFatal(err)
	}

	st.entitlement = token
	st.logf("Entitlement token acquired")
	return stepOK()
}

func (p *Pipeline) fetchStorefront(ctx context.Context, st *runState) stepResult {
	req, err := p.api.StorefrontRequest(p.endpoints.StorefrontBase, st.shard, st.puuid, st.creds.AccessToken, st.entitlement, st.version)
	if err != nil {
		return stepFatal(err)
	}

	body, err := p.api.Send(ctx, req, "RiotStore")
	if err != nil {
		return stepFatal(err)
	}

	st.storefront = body
	st.logf("Storefront loaded")
	return stepOK()
}

// resolveShard maps a geo affinity to the shard hosting its storefront.
// latam and br are served by the na backend. An empty affinity yields None so
// callers keep whatever shard they already had.
func resolveShard(affinity string) mo.Option[string] {
	switch affinity {
	case "":
		return mo.None[string]()
	case "latam", "br":
		return mo.Some("na")
	default:
		return mo.Some(affinity)
	}
}

func parseClientVersion(body string) (string, error) {
	return jsonNonEmptyString(body, "data.riotClientVersion")
}

func jsonString(body, path string) (string, error) {
	if !gjson.Valid(body) {
		return "", &ParseError{Field: path, Err: errInvalidJSON}
	}
	r := gjson.Get(body, path)
	if !r.Exists() || r.Type != gjson.String {
		return "", &ParseError{Field: path}
	}
	return r.String(), nil
}

func jsonNonEmptyString(body, path string) (string, error) {
	s, err := jsonString(body, path)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", &ParseError{Field: path}
	}
	return s, nil
}
