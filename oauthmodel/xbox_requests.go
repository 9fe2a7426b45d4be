package oauthmodel

const (
	XboxUserRelyingParty = "http://auth.xboxlive.com"
	XboxLiveRelyingParty = "http://xboxlive.com"
	HaloRelyingParty     = "https://prod.xsts.halowaypoint.com/"

	xboxAuthMethod        = "RPS"
	xboxSiteName          = "user.auth.xboxlive.com"
	jwtTokenType          = "JWT"
	spartanProofTokenType = "Xbox_XSTSv3"
)

type XboxUserProperties struct {
	AuthMethod string `json:"AuthMethod"`
	RpsTicket  string `json:"RpsTicket"`
	SiteName   string `json:"SiteName"`
}

// XboxUserRequest is the body POSTed to user.auth.xboxlive.com.
type XboxUserRequest struct {
	Properties   XboxUserProperties `json:"Properties"`
	RelyingParty string             `json:"RelyingParty"`
	TokenType    string             `json:"TokenType"`
}

// NewXboxUserRequest builds the request for a Microsoft account access token.
// The "d=" prefix marks a ticket issued to a third party application.
func NewXboxUserRequest(accessToken string) XboxUserRequest {
	return XboxUserRequest{
		Properties: XboxUserProperties{
			AuthMethod: xboxAuthMethod,
			RpsTicket:  "d=" + accessToken,
			SiteName:   xboxSiteName,
		},
		RelyingParty: XboxUserRelyingParty,
		TokenType:    jwtTokenType,
	}
}

type XSTSProperties struct {
	SandboxID  string   `json:"SandboxId"`
	UserTokens []string `json:"UserTokens"`
}

// XSTSRequest is the body POSTed to xsts.auth.xboxlive.com. Only the relying
// party differs between the Xbox Live and Halo tokens.
type XSTSRequest struct {
	Properties   XSTSProperties `json:"Properties"`
	RelyingParty string         `json:"RelyingParty"`
	TokenType    string         `json:"TokenType"`
}

func NewXSTSRequest(sandboxID, xboxUserToken, relyingParty string) XSTSRequest {
	return XSTSRequest{
		Properties: XSTSProperties{
			SandboxID:  sandboxID,
			UserTokens: []string{xboxUserToken},
		},
		RelyingParty: relyingParty,
		TokenType:    jwtTokenType,
	}
}

type SpartanProof struct {
	Token     string `json:"Token"`
	TokenType string `json:"TokenType"`
}

// SpartanTokenRequest is the body POSTed to the Halo Waypoint spartan-token endpoint.
type SpartanTokenRequest struct {
	Audience   string         `json:"Audience"`
	MinVersion string         `json:"MinVersion"`
	Proof      []SpartanProof `json:"Proof"`
}

func NewSpartanTokenRequest(audience, minVersion, xstsHaloToken string) SpartanTokenRequest {
	return SpartanTokenRequest{
		Audience:   audience,
		MinVersion: minVersion,
		Proof: []SpartanProof{
			{Token: xstsHaloToken, TokenType: spartanProofTokenType},
		},
	}
}
