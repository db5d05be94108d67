package console

import "github.com/screencontrol-dev/console/pkg/protocol"

// Callbacks is the host surface. Every field is optional; nil callbacks are
// skipped. All callbacks run on the client's event loop, so they must not
// block and must not call back into the client synchronously.
type Callbacks struct {
	// OnStatus fires on every connection state transition.
	OnStatus func(s Status)

	// OnScreenInfo fires when the agent reports its monitor topology.
	OnScreenInfo func(info *protocol.ScreenInfo)

	// OnResolution fires when the streamed frame geometry changes.
	OnResolution func(width, height int)

	// OnChat delivers an inbound chat message.
	OnChat func(msg *protocol.ChatMessage)

	// OnClipboard delivers clipboard text synced from the agent.
	OnClipboard func(text string)

	// OnCommandResponse delivers the result of a remote command.
	OnCommandResponse func(resp *protocol.CommandResponse)

	// OnFileList delivers a directory listing.
	OnFileList func(list *protocol.FileList)

	// OnTerminalData delivers remote terminal output.
	OnTerminalData func(data []byte)

	// OnTransferAck delivers the server's answer to a file transfer
	// request, presigned URL included.
	OnTransferAck func(ack *protocol.FileTransferAck)

	// OnConsent delivers the remote user's consent decision.
	OnConsent func(resp *protocol.ConsentResponse)

	// OnQualityTier fires when the adaptive controller changes tier.
	OnQualityTier func(tier Tier)

	// OnCodecDisabled fires once per connection when the H.264 path is
	// permanently disabled and the stream falls back to JPEG.
	OnCodecDisabled func(err error)
}
