package server

// indexHTML is the landing page. It only needs to hand visitors the CSV
// download link.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Major News Archive</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 640px; margin: 80px auto; padding: 0 20px; color: #222; }
        h1 { font-size: 1.6em; }
        p { line-height: 1.5; color: #555; }
        a.button { display: inline-block; margin-top: 16px; padding: 12px 24px; background: #1a73e8; color: #fff; text-decoration: none; border-radius: 4px; }
        a.button:hover { background: #1558b0; }
        footer { margin-top: 48px; font-size: 0.85em; color: #999; }
    </style>
</head>
<body>
    <h1>Major News Archive</h1>
    <p>
        Major world news from January 2018 to today, collected from The
        Guardian, Reddit and NewsAPI, deduplicated and sorted newest first.
    </p>
    <p>
        The first download builds the archive, which can take a little while.
        After that the same file is served until it is refreshed.
    </p>
    <a class="button" href="/download">Download CSV</a>
    <footer>Served by paperboy.</footer>
</body>
</html>
`
