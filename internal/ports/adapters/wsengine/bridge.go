package wsengine

const bridgeHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>blogcast speech bridge</title>
<style>
body { font-family: system-ui, sans-serif; margin: 3rem; color: #222; }
#status { font-weight: bold; }
</style>
</head>
<body>
<h1>blogcast</h1>
<p>Status: <span id="status">connecting</span></p>
<p>Keep this tab open while the episode plays.</p>
<script>
(() => {
	const status = document.getElementById('status');
	const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
	const send = (msg) => { if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg)); };

	const pickVoice = (name) => {
		if (!name) return null;
		return speechSynthesis.getVoices().find((v) => v.name === name || v.voiceURI === name) || null;
	};

	const speak = (cmd) => {
		const u = new SpeechSynthesisUtterance(cmd.text || '');
		const voice = pickVoice(cmd.voice);
		if (voice) u.voice = voice;
		if (cmd.rate) u.rate = cmd.rate;
		if (cmd.pitch) u.pitch = cmd.pitch;
		if (cmd.volume) u.volume = cmd.volume;
		u.onstart = () => { status.textContent = 'speaking'; send({ event: 'start', id: cmd.id }); };
		u.onend = () => { status.textContent = 'idle'; send({ event: 'end', id: cmd.id }); };
		u.onerror = (e) => { status.textContent = 'error'; send({ event: 'error', id: cmd.id, error: e.error || 'speech error' }); };
		u.onboundary = (e) => send({ event: 'boundary', id: cmd.id, charIndex: e.charIndex });
		speechSynthesis.speak(u);
	};

	ws.onopen = () => { status.textContent = 'connected'; };
	ws.onclose = () => { status.textContent = 'disconnected'; speechSynthesis.cancel(); };
	ws.onmessage = (m) => {
		const cmd = JSON.parse(m.data);
		if (cmd.op === 'speak') speak(cmd);
		if (cmd.op === 'cancel') speechSynthesis.cancel();
	};
})();
</script>
</body>
</html>
`
